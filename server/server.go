package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/instantdoc/server/auth/key"
	"github.com/Daskott/instantdoc/server/gemini"
	"github.com/Daskott/instantdoc/server/gstorage"
	"github.com/Daskott/instantdoc/server/hospital"
	"github.com/Daskott/instantdoc/server/logger"
	"github.com/Daskott/instantdoc/server/models"
	"github.com/Daskott/instantdoc/server/places"
	"github.com/Daskott/instantdoc/server/twilio"
	"github.com/Daskott/instantdoc/server/work"
	"github.com/Daskott/instantdoc/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

const (
	READ_TIMEOUT  = 15 * time.Second
	WRITE_TIMEOUT = 90 * time.Second
)

var logg = logger.NewLogger("server")

// Assistant answers a single prompt from the generative AI provider
type Assistant interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Messenger delivers a text message to a phone number
type Messenger interface {
	SendMessage(to, msg string) error
}

// BackupStorage stores a local file as a remote object
type BackupStorage interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
}

// Services groups the external providers used by the handlers & job handlers.
// BackupStorage may be nil when database backups are disabled.
type Services struct {
	Assistant      Assistant
	HospitalFinder hospital.Finder
	Messenger      Messenger
	BackupStorage  BackupStorage
}

type Server struct {
	store         *models.Store
	keyPair       *key.KeyPair
	workerPool    *work.WorkerPoolAdapter
	services      Services
	storageConfig shared.StorageConfig
	validate      *validator.Validate
}

// NewServer wires the handlers to their dependencies & registers the job handlers on 'workerPool'
func NewServer(
	store *models.Store,
	keyPair *key.KeyPair,
	workerPool *work.WorkerPoolAdapter,
	services Services,
	storageConfig shared.StorageConfig,
) (*Server, error) {
	validate := validator.New()
	err := registerValidators(validate)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		store:         store,
		keyPair:       keyPair,
		workerPool:    workerPool,
		services:      services,
		storageConfig: storageConfig,
		validate:      validate,
	}

	err = srv.registerJobHandlers()
	if err != nil {
		return nil, err
	}

	return srv, nil
}

// Handler returns the router for all routes, wrapped with CORS for any origin
func (srv *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(initialContextMiddleware)

	router.HandleFunc("/health", srv.health).Methods("GET")
	router.HandleFunc("/ready", srv.ready).Methods("GET")
	router.HandleFunc("/jwks", srv.jwks).Methods("GET")

	router.HandleFunc("/register", srv.register).Methods("POST")
	router.HandleFunc("/login", srv.login).Methods("POST")

	router.HandleFunc("/contacts", srv.addContact).Methods("POST")
	router.HandleFunc("/contacts/{user_id}", srv.listContacts).Methods("GET")
	router.HandleFunc("/contacts/{id}", srv.deleteContact).Methods("DELETE")

	router.HandleFunc("/gemini", srv.askGemini).Methods("POST")
	router.HandleFunc("/hospitals/nearest", srv.nearestHospital).Methods("GET")
	router.HandleFunc("/emergency-numbers", srv.emergencyNumbers).Methods("GET")

	userRouter := router.PathPrefix("/users/{uid}").Subrouter()
	userRouter.Use(srv.protectedRouteMiddleware)
	userRouter.HandleFunc("/sos", srv.sendSOS).Methods("POST")

	router.NotFoundHandler = http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		writeError(rw, "Not found", http.StatusNotFound)
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)
}

// Start reads the server config, opens the store, wires the providers & serves
// until SIGINT/SIGTERM
func Start(config *viper.Viper, devMode bool) {
	serverConfig := shared.ServerConfig{}

	err := config.Unmarshal(&serverConfig)
	fatalOnError(err)

	err = validator.New().Struct(serverConfig)
	fatalOnError(err)

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(serverConfig.Instantdoc.PrivateKeyPem)
	fatalOnError(err)

	store, err := models.Open(serverConfig.Database, configDirectory(devMode))
	fatalOnError(err)

	err = store.AutoMigrate()
	fatalOnError(err)

	ctx := context.Background()

	assistant, err := gemini.NewClient(ctx, serverConfig.Gemini)
	fatalOnError(err)

	hospitalFinder, err := places.NewClient(ctx, serverConfig.Google.MapsAPIKey)
	fatalOnError(err)

	services := Services{
		Assistant:      assistant,
		HospitalFinder: hospitalFinder,
		Messenger:      twilio.NewClient(serverConfig.Twilio, devMode),
	}

	storageConfig := serverConfig.Google.Storage
	if storageConfig.EnableBackup {
		backupStorage, err := gstorage.NewGStorage(ctx, serverConfig.Google.ApplicationCredentials)
		fatalOnError(err)
		defer backupStorage.Close()

		services.BackupStorage = backupStorage
	}

	workerPool := work.NewWorkerAdapter(store, serverConfig.Instantdoc.Cron.TimeZone, serverConfig.Instantdoc.Workers)

	srv, err := NewServer(store, keyPair, workerPool, services, storageConfig)
	fatalOnError(err)

	err = srv.enqueueJobs()
	fatalOnError(err)

	err = workerPool.Start()
	fatalOnError(err)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%v", serverConfig.Instantdoc.Listener.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  READ_TIMEOUT,
		WriteTimeout: WRITE_TIMEOUT,
	}

	go serve(httpServer)

	// Wait for an interrupt
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cleanup(workerPool, httpServer, store)
}
