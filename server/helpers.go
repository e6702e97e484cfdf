package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/instantdoc/server/models"
	"github.com/Daskott/instantdoc/server/work"
	"github.com/Daskott/instantdoc/utils"
	"github.com/go-playground/validator"
)

const (
	INVALID_EMAIL_MSG       = "Please provide a valid email address"
	INVALID_PHONE_MSG       = "Please provide a valid phone number"
	INVALID_COORDINATES_MSG = "Valid 'lat' and 'lng' query parameters are required"
	INVALID_BODY_MSG        = "Invalid request body"
	DATABASE_ERROR_MSG      = "Database error"
)

type ErrorPayload struct {
	Error string `json:"error"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad interface{}, statusCode int) {
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeError(rw http.ResponseWriter, errMsg string, statusCode int) {
	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		logg.Info(errMsg)
	}

	writeResponse(rw, ErrorPayload{Error: errMsg}, statusCode)
}

// writeInternalError logs 'err' & responds with the generic 'errMsg'
func writeInternalError(rw http.ResponseWriter, errMsg string, err error) {
	logg.Error(err)
	writeError(rw, errMsg, http.StatusInternalServerError)
}

// decodeJSONBody decodes the request body into 'data'. An empty body leaves 'data' as is.
func decodeJSONBody(r *http.Request, data interface{}) error {
	err := json.NewDecoder(r.Body).Decode(data)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// validationMessage maps validator errors to the message returned to the client.
// Missing fields take precedence over malformed ones.
func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return models.ErrValidation.Error()
	}

	msg := models.ErrValidation.Error()
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			return models.ErrValidation.Error()
		case "email":
			msg = INVALID_EMAIL_MSG
		case "phone":
			msg = INVALID_PHONE_MSG
		case "latitude", "longitude":
			msg = INVALID_COORDINATES_MSG
		}
	}

	return msg
}

func registerValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return models.NormalizePhone(fl.Field().String()) != ""
	})
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("InstantDoc server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, store *models.Store) {
	// Stop all background jobs before the db goes away
	workerPool.Stop()

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("InstantDoc server shutdown failed:%+s", err)
	}

	if err := store.Close(); err != nil {
		logg.Error(err)
	}

	logg.Infof("InstantDoc server stopped properly")
}

// configDirectory retrieves the directory to store instantdoc data (i.e. the sqlite db)
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'instantdoc' folder in home directory for prod
	configFolderName := "instantdoc"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.EnsureDir(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
