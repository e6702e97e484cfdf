package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Daskott/instantdoc/server/auth"
	"github.com/Daskott/instantdoc/server/auth/key"
	"github.com/Daskott/instantdoc/server/hospital"
	"github.com/Daskott/instantdoc/server/models"
	"github.com/Daskott/instantdoc/server/work"
	"github.com/gorilla/mux"
)

const READY_CHECK_TIMEOUT = 2 * time.Second

type EmergencyNumber struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

var emergencyNumbers = []EmergencyNumber{
	{Name: "Emergency", Number: "999"},
	{Name: "Ambulance", Number: "121"},
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type contactRequest struct {
	// Clients send the id either as a number or a string
	UserID json.Number `json:"user_id" validate:"required"`
	Name   string      `json:"name" validate:"required"`
	Phone  string      `json:"phone" validate:"required,phone"`
}

type geminiRequest struct {
	Prompt string `json:"prompt"`
}

type sosRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

type publicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ---------------------------------------------------------------------------------//
// Auth
// --------------------------------------------------------------------------------//

func (srv *Server) register(rw http.ResponseWriter, r *http.Request) {
	data := registerRequest{}

	err := decodeJSONBody(r, &data)
	if err != nil {
		writeError(rw, INVALID_BODY_MSG, http.StatusBadRequest)
		return
	}

	err = srv.validate.Struct(data)
	if err != nil {
		writeError(rw, validationMessage(err), http.StatusBadRequest)
		return
	}

	user, err := srv.store.CreateUser(data.Name, data.Email, data.Password)
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrDuplicateEmail) {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		writeInternalError(rw, DATABASE_ERROR_MSG, err)
		return
	}

	writeResponse(rw, map[string]interface{}{
		"message": "User registered successfully!",
		"id":      user.ID,
	}, http.StatusCreated)
}

func (srv *Server) login(rw http.ResponseWriter, r *http.Request) {
	data := loginRequest{}

	err := decodeJSONBody(r, &data)
	if err != nil {
		writeError(rw, INVALID_BODY_MSG, http.StatusBadRequest)
		return
	}

	err = srv.validate.Struct(data)
	if err != nil {
		writeError(rw, validationMessage(err), http.StatusBadRequest)
		return
	}

	user, err := srv.store.Authenticate(data.Email, data.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		writeError(rw, err.Error(), http.StatusUnauthorized)
		return
	}

	if errors.Is(err, models.ErrValidation) {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		writeInternalError(rw, DATABASE_ERROR_MSG, err)
		return
	}

	token, err := auth.EncodeJWT(auth.NewSessionTokenClaims(user.ID, user.Name, user.Email, time.Now()), srv.keyPair)
	if err != nil {
		writeInternalError(rw, "Internal server error", err)
		return
	}

	logg.Infof("Login successful for user: %v", user.ID)
	writeResponse(rw, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    publicUser{ID: user.ID, Name: user.Name, Email: user.Email},
	}, http.StatusOK)
}

func (srv *Server) jwks(rw http.ResponseWriter, r *http.Request) {
	jwk, err := srv.keyPair.JWK()
	if err != nil {
		writeInternalError(rw, "Internal server error", err)
		return
	}

	writeResponse(rw, key.ExportJWKAsJWKS(jwk), http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contacts
// --------------------------------------------------------------------------------//

func (srv *Server) addContact(rw http.ResponseWriter, r *http.Request) {
	data := contactRequest{}

	err := decodeJSONBody(r, &data)
	if err != nil {
		writeError(rw, INVALID_BODY_MSG, http.StatusBadRequest)
		return
	}

	err = srv.validate.Struct(data)
	if err != nil {
		writeError(rw, validationMessage(err), http.StatusBadRequest)
		return
	}

	userID, err := parseID(data.UserID.String())
	if err != nil {
		writeError(rw, "Invalid user ID", http.StatusBadRequest)
		return
	}

	contact, err := srv.store.AddContact(userID, data.Name, data.Phone)
	if errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrDuplicateContact) ||
		errors.Is(err, models.ErrContactLimit) {
		writeError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		writeInternalError(rw, DATABASE_ERROR_MSG, err)
		return
	}

	writeResponse(rw, map[string]interface{}{
		"message": "Contact saved successfully!",
		"id":      contact.ID,
	}, http.StatusCreated)
}

func (srv *Server) listContacts(rw http.ResponseWriter, r *http.Request) {
	userID, err := parseID(mux.Vars(r)["user_id"])
	if err != nil {
		writeError(rw, "Invalid user ID", http.StatusBadRequest)
		return
	}

	contacts, err := srv.store.ListContacts(userID)
	if err != nil {
		writeInternalError(rw, DATABASE_ERROR_MSG, err)
		return
	}

	writeResponse(rw, contacts, http.StatusOK)
}

func (srv *Server) deleteContact(rw http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, "Invalid contact ID", http.StatusBadRequest)
		return
	}

	err = srv.store.DeleteContact(id)
	if errors.Is(err, models.ErrContactNotFound) {
		writeError(rw, err.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		writeInternalError(rw, "Failed to delete contact", err)
		return
	}

	writeResponse(rw, map[string]string{"message": "Contact deleted successfully"}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Assistant & hospitals
// --------------------------------------------------------------------------------//

func (srv *Server) askGemini(rw http.ResponseWriter, r *http.Request) {
	data := geminiRequest{}

	err := decodeJSONBody(r, &data)
	if err != nil {
		writeError(rw, INVALID_BODY_MSG, http.StatusBadRequest)
		return
	}

	reply, err := srv.services.Assistant.Ask(r.Context(), data.Prompt)
	if err != nil {
		writeInternalError(rw, "Failed to get response from Gemini API", err)
		return
	}

	writeResponse(rw, map[string]string{"reply": reply}, http.StatusOK)
}

func (srv *Server) nearestHospital(rw http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	origin, err := srv.parseCoordinate(query.Get("lat"), query.Get("lng"))
	if err != nil {
		writeError(rw, INVALID_COORDINATES_MSG, http.StatusBadRequest)
		return
	}

	result, err := hospital.FindNearest(r.Context(), srv.services.HospitalFinder, origin)
	if err != nil {
		logg.Error(err)
		writeError(rw, "Failed to fetch nearby hospitals", http.StatusBadGateway)
		return
	}

	writeResponse(rw, result, http.StatusOK)
}

func (srv *Server) emergencyNumbers(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, emergencyNumbers, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// SOS
// --------------------------------------------------------------------------------//

func (srv *Server) sendSOS(rw http.ResponseWriter, r *http.Request) {
	decodedJWT := r.Context().Value(DECODED_JWT_CONTEXT_KEY).(DecodedJWT)
	data := sosRequest{}

	err := decodeJSONBody(r, &data)
	if err != nil {
		writeError(rw, INVALID_BODY_MSG, http.StatusBadRequest)
		return
	}

	err = srv.validate.Struct(data)
	if err != nil {
		writeError(rw, INVALID_COORDINATES_MSG, http.StatusBadRequest)
		return
	}

	userID, err := decodedJWT.Claims.UserID()
	if err != nil {
		writeError(rw, "invalid token provided", http.StatusUnauthorized)
		return
	}

	contacts, err := srv.store.ListContacts(userID)
	if err != nil {
		writeInternalError(rw, DATABASE_ERROR_MSG, err)
		return
	}

	if len(contacts) == 0 {
		writeError(rw, "Add at least one emergency contact before sending an SOS", http.StatusBadRequest)
		return
	}

	message := sosMessage(decodedJWT.Claims.Name, data.Latitude, data.Longitude)
	for _, contact := range contacts {
		err = srv.workerPool.Perform(work.JobParams{
			Name:    fmt.Sprintf("%v-%v-%v", SEND_SMS_JOB, userID, contact.ID),
			Handler: SEND_SMS_JOB,
			Args: map[string]interface{}{
				"to":      contact.Phone,
				"message": message,
			},
		})
		if err != nil {
			writeInternalError(rw, "Failed to queue SOS messages", err)
			return
		}
	}

	writeResponse(rw, map[string]interface{}{
		"message": "SOS messages queued",
		"queued":  len(contacts),
	}, http.StatusAccepted)
}

// ---------------------------------------------------------------------------------//
// Health
// --------------------------------------------------------------------------------//

func (srv *Server) health(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, map[string]string{"status": "ok"}, http.StatusOK)
}

func (srv *Server) ready(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), READY_CHECK_TIMEOUT)
	defer cancel()

	err := srv.store.Ping(ctx)
	if err != nil {
		logg.Error(err)
		writeResponse(rw, map[string]string{"status": "degraded"}, http.StatusServiceUnavailable)
		return
	}

	stats, err := srv.store.CurrentJobsStats()
	if err != nil {
		logg.Error(err)
		writeResponse(rw, map[string]string{"status": "degraded"}, http.StatusServiceUnavailable)
		return
	}

	writeResponse(rw, map[string]interface{}{"status": "ok", "jobs": stats}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}

	if id == 0 {
		return 0, fmt.Errorf("id must be positive")
	}

	return uint(id), nil
}

func (srv *Server) parseCoordinate(latValue, lngValue string) (hospital.Coordinate, error) {
	err := srv.validate.Var(latValue, "required,latitude")
	if err != nil {
		return hospital.Coordinate{}, err
	}

	err = srv.validate.Var(lngValue, "required,longitude")
	if err != nil {
		return hospital.Coordinate{}, err
	}

	lat, err := strconv.ParseFloat(latValue, 64)
	if err != nil {
		return hospital.Coordinate{}, err
	}

	lng, err := strconv.ParseFloat(lngValue, 64)
	if err != nil {
		return hospital.Coordinate{}, err
	}

	return hospital.Coordinate{Latitude: lat, Longitude: lng}, nil
}

func sosMessage(name string, lat, lng *float64) string {
	message := fmt.Sprintf("SOS: %v needs urgent help and listed you as an emergency contact.", name)
	if lat != nil && lng != nil {
		message += fmt.Sprintf(" Last known location: https://maps.google.com/?q=%v,%v", *lat, *lng)
	}

	return message
}
