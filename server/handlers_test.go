package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Daskott/instantdoc/server/auth"
	"github.com/Daskott/instantdoc/server/gemini"
	"github.com/Daskott/instantdoc/server/hospital"
	"github.com/Daskott/instantdoc/server/places"
	"github.com/Daskott/instantdoc/shared"
	"github.com/stretchr/testify/assert"
)

func registerUser(t *testing.T, ts *testServer, name, email string) uint {
	rr := ts.request("POST", "/register",
		fmt.Sprintf(`{"name":%q,"email":%q,"password":"secret"}`, name, email), nil)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	return uint(decodeBody(t, rr)["id"].(float64))
}

func loginToken(t *testing.T, ts *testServer, email string) string {
	rr := ts.request("POST", "/login", fmt.Sprintf(`{"email":%q,"password":"secret"}`, email), nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return decodeBody(t, rr)["token"].(string)
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t, Services{}, shared.StorageConfig{})

	rr := ts.request("POST", "/register", `{"name":"Rahim","email":"rahim@example.com","password":"secret"}`, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "User registered successfully!", body["message"])
	assert.NotZero(t, body["id"])

	cases := []struct {
		description string
		body        string
		expectedMsg string
	}{
		{"duplicate email", `{"name":"Other","email":"rahim@example.com","password":"x"}`, "Email already exists. Please use a different email."},
		{"missing password", `{"name":"Rahim","email":"new@example.com"}`, "All fields are required"},
		{"empty body", ``, "All fields are required"},
		{"blank name", `{"name":"  ","email":"new@example.com","password":"x"}`, "All fields are required"},
		{"malformed email", `{"name":"Rahim","email":"not-an-email","password":"x"}`, INVALID_EMAIL_MSG},
		{"malformed json", `{"name":`, INVALID_BODY_MSG},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			rr := ts.request("POST", "/register", c.body, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, c.expectedMsg, errorMessage(t, rr))
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, Services{}, shared.StorageConfig{})
	userID := registerUser(t, ts, "Rahim", "rahim@example.com")

	t.Run("returns a session token for the user", func(t *testing.T) {
		rr := ts.request("POST", "/login", `{"email":"rahim@example.com","password":"secret"}`, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, "Login successful", body["message"])

		user := body["user"].(map[string]interface{})
		assert.Equal(t, float64(userID), user["id"])
		assert.Equal(t, "Rahim", user["name"])
		assert.Equal(t, "rahim@example.com", user["email"])
		assert.NotContains(t, user, "password")

		claims, err := auth.DecodeJWT(body["token"].(string), testKeyPair)
		assert.Nil(t, err)
		assert.Equal(t, fmt.Sprint(userID), claims.Subject)

		expiresIn := time.Unix(claims.ExpiresAt, 0).Sub(time.Unix(claims.IssuedAt, 0))
		assert.Equal(t, time.Hour, expiresIn)
	})

	cases := []struct {
		description  string
		body         string
		expectedCode int
		expectedMsg  string
	}{
		{"wrong password", `{"email":"rahim@example.com","password":"wrong"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", `{"email":"nobody@example.com","password":"secret"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"missing password", `{"email":"rahim@example.com"}`, http.StatusBadRequest, "All fields are required"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			rr := ts.request("POST", "/login", c.body, nil)
			assert.Equal(t, c.expectedCode, rr.Code)
			assert.Equal(t, c.expectedMsg, errorMessage(t, rr))
		})
	}
}

func TestAddContact(t *testing.T) {
	ts := newTestServer(t, Services{}, shared.StorageConfig{})
	userID := registerUser(t, ts, "Rahim", "rahim@example.com")

	for i, phone := range []string{"01711-000001", "01711-000002", "01711-000003"} {
		rr := ts.request("POST", "/contacts",
			fmt.Sprintf(`{"user_id":%v,"name":"Contact %v","phone":%q}`, userID, i, phone), nil)
		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "Contact saved successfully!", decodeBody(t, rr)["message"])
	}

	// user_id sent as a string
	rr := ts.request("POST", "/contacts",
		fmt.Sprintf(`{"user_id":"%v","name":"Fourth","phone":"01711000004"}`, userID), nil)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	cases := []struct {
		description string
		body        string
		expectedMsg string
	}{
		{"duplicate phone", fmt.Sprintf(`{"user_id":%v,"name":"Dup","phone":"+(017) 11000001"}`, userID), "This phone number is already added as an emergency contact."},
		{"fifth contact", fmt.Sprintf(`{"user_id":%v,"name":"Fifth","phone":"01711000005"}`, userID), "You can only add up to 4 emergency contacts."},
		{"missing user_id", `{"name":"Someone","phone":"01711000006"}`, "All fields are required"},
		{"missing phone", fmt.Sprintf(`{"user_id":%v,"name":"Someone"}`, userID), "All fields are required"},
		{"phone without digits", fmt.Sprintf(`{"user_id":%v,"name":"Someone","phone":"none"}`, userID), INVALID_PHONE_MSG},
		{"zero user_id", `{"user_id":0,"name":"Someone","phone":"01711000007"}`, "Invalid user ID"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			rr := ts.request("POST", "/contacts", c.body, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, c.expectedMsg, errorMessage(t, rr))
		})
	}
}

func TestListAndDeleteContacts(t *testing.T) {
	ts := newTestServer(t, Services{}, shared.StorageConfig{})
	userID := registerUser(t, ts, "Rahim", "rahim@example.com")

	rr := ts.request("GET", fmt.Sprintf("/contacts/%v", userID), "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	contactIDs := []uint{}
	for i, name := range []string{"Mum", "Dad"} {
		contact, err := ts.store.AddContact(userID, name, fmt.Sprintf("0171100000%v", i))
		assert.Nil(t, err)
		contactIDs = append(contactIDs, contact.ID)
	}

	rr = ts.request("GET", fmt.Sprintf("/contacts/%v", userID), "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Mum"`)
	assert.Less(t, strings.Index(rr.Body.String(), "Mum"), strings.Index(rr.Body.String(), "Dad"))
	assert.NotContains(t, rr.Body.String(), "normalized")

	rr = ts.request("GET", "/contacts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request("DELETE", fmt.Sprintf("/contacts/%v", contactIDs[0]), "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Contact deleted successfully", decodeBody(t, rr)["message"])

	rr = ts.request("DELETE", fmt.Sprintf("/contacts/%v", contactIDs[0]), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Contact not found", errorMessage(t, rr))

	rr = ts.request("DELETE", "/contacts/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid contact ID", errorMessage(t, rr))
}

func TestAskGemini(t *testing.T) {
	assistant := &assistantStub{reply: "Apply pressure to the wound."}
	ts := newTestServer(t, Services{Assistant: assistant}, shared.StorageConfig{})

	rr := ts.request("POST", "/gemini", `{"prompt":"  How do I stop bleeding?  "}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Apply pressure to the wound.", decodeBody(t, rr)["reply"])
	assert.Equal(t, "  How do I stop bleeding?  ", assistant.prompt, "prompt should be forwarded verbatim")

	assistant.reply = gemini.FALLBACK_REPLY
	rr = ts.request("POST", "/gemini", `{"prompt":"hi"}`, nil)
	assert.Equal(t, gemini.FALLBACK_REPLY, decodeBody(t, rr)["reply"])

	assistant.err = gemini.ErrUpstream
	rr = ts.request("POST", "/gemini", `{"prompt":"hi"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to get response from Gemini API", errorMessage(t, rr))
}

func TestNearestHospital(t *testing.T) {
	finder := &hospitalFinderStub{}
	ts := newTestServer(t, Services{HospitalFinder: finder}, shared.StorageConfig{})

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		for _, query := range []string{"", "?lat=23.8", "?lat=91&lng=90", "?lat=23.8&lng=181", "?lat=abc&lng=90"} {
			rr := ts.request("GET", "/hospitals/nearest"+query, "", nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code, query)
			assert.Equal(t, INVALID_COORDINATES_MSG, errorMessage(t, rr))
		}
	})

	t.Run("reports no hospitals found", func(t *testing.T) {
		rr := ts.request("GET", "/hospitals/nearest?lat=23.8103&lng=90.4125", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, false, body["found"])
		assert.Nil(t, body["nearest"])
		assert.Equal(t, []interface{}{}, body["hospitals"])
	})

	t.Run("returns the nearest hospital", func(t *testing.T) {
		finder.candidates = []hospital.Candidate{
			{Name: "Far", Coordinate: hospital.Coordinate{Latitude: 23.9, Longitude: 90.4125}},
			{Name: "Near", Vicinity: "Gulshan", Coordinate: hospital.Coordinate{Latitude: 23.8203, Longitude: 90.4125}},
		}

		rr := ts.request("GET", "/hospitals/nearest?lat=23.8103&lng=90.4125", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody(t, rr)
		assert.Equal(t, true, body["found"])
		assert.Equal(t, "Near", body["nearest"].(map[string]interface{})["name"])
		assert.Equal(t, 1.11, body["distance_km"])
		assert.Len(t, body["hospitals"], 2)
	})

	t.Run("provider failure is a bad gateway", func(t *testing.T) {
		finder.err = errors.New("wrapped: " + places.ErrUpstream.Error())

		rr := ts.request("GET", "/hospitals/nearest?lat=23.8103&lng=90.4125", "", nil)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSendSOS(t *testing.T) {
	messenger := &messengerStub{}
	ts := newTestServer(t, Services{Messenger: messenger}, shared.StorageConfig{})

	userID := registerUser(t, ts, "Rahim", "rahim@example.com")
	otherID := registerUser(t, ts, "Karim", "karim@example.com")
	token := loginToken(t, ts, "rahim@example.com")
	authHeader := map[string]string{"Authorization": "Bearer " + token}
	sosPath := fmt.Sprintf("/users/%v/sos", userID)

	t.Run("requires a token", func(t *testing.T) {
		rr := ts.request("POST", sosPath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = ts.request("POST", sosPath, "", map[string]string{"Authorization": "Bearer not-a-jwt"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("forbids other users", func(t *testing.T) {
		rr := ts.request("POST", fmt.Sprintf("/users/%v/sos", otherID), "", authHeader)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("requires at least one contact", func(t *testing.T) {
		rr := ts.request("POST", sosPath, "", authHeader)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid coordinates", func(t *testing.T) {
		_, err := ts.store.AddContact(userID, "Mum", "01711000001")
		assert.Nil(t, err)

		rr := ts.request("POST", sosPath, `{"latitude":123,"longitude":90}`, authHeader)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("queues one message per contact", func(t *testing.T) {
		_, err := ts.store.AddContact(userID, "Dad", "01711000002")
		assert.Nil(t, err)

		rr := ts.request("POST", sosPath, `{"latitude":23.81,"longitude":90.41}`, authHeader)
		assert.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
		assert.Equal(t, float64(2), decodeBody(t, rr)["queued"])

		ts.workerPool.Start()
		defer ts.workerPool.Stop()

		assert.Eventually(t, func() bool { return len(messenger.Sent()) == 2 }, 5*time.Second, 20*time.Millisecond)

		sent := messenger.Sent()
		recipients := []string{sent[0].to, sent[1].to}
		assert.ElementsMatch(t, []string{"01711000001", "01711000002"}, recipients)
		assert.Contains(t, sent[0].msg, "Rahim")
		assert.Contains(t, sent[0].msg, "https://maps.google.com/?q=23.81,90.41")
	})
}
