package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Daskott/instantdoc/colors"
	"github.com/Daskott/instantdoc/server/auth"
	"github.com/gorilla/mux"
)

type RequestContextKey string

const DECODED_JWT_CONTEXT_KEY = RequestContextKey("decodedJWT")

type DecodedJWT struct {
	Claims   *auth.SessionTokenClaims
	ErrorMsg string
}

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         http.StatusOK,
		}

		defer func() {
			logg.Info(
				r.Method, " ",
				r.RequestURI, " ",
				colors.HTTPStatus(responseWriter.Status), " ",
				colors.Elapsed(time.Since(start)))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// protectedRouteMiddleware only lets a user act on their own '/users/{uid}' resources.
// The decoded token is added to the request context.
func (srv *Server) protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT := srv.decodeAndVerifyAuthHeader(r.Header.Get("Authorization"))
		if decodedJWT.ErrorMsg != "" {
			writeError(w, decodedJWT.ErrorMsg, http.StatusUnauthorized)
			return
		}

		if mux.Vars(r)["uid"] != decodedJWT.Claims.Subject {
			writeError(w, "action is forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), DECODED_JWT_CONTEXT_KEY, decodedJWT)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (srv *Server) decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], srv.keyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = srv.store.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}
