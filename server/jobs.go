package server

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/Daskott/instantdoc/server/work"
	"github.com/Daskott/instantdoc/utils"
)

const (
	SEND_SMS_JOB  = "send_sms"
	BACKUP_DB_JOB = "backup_db"

	BACKUP_TIMEOUT = time.Minute
)

func (srv *Server) registerJobHandlers() error {
	err := srv.workerPool.Register(SEND_SMS_JOB, srv.sendSms)
	if err != nil {
		return err
	}

	return srv.workerPool.Register(BACKUP_DB_JOB, srv.backupSqliteDb)
}

// enqueueJobs schedules the periodic jobs. The db backup only runs for sqlite
// stores when backups are enabled.
func (srv *Server) enqueueJobs() error {
	if !srv.storageConfig.EnableBackup {
		return nil
	}

	if srv.store.SqliteFilePath() == "" {
		logg.Warn("Database backups are only supported for sqlite, skipping backup schedule")
		return nil
	}

	return srv.workerPool.PeriodicallyPerform(srv.storageConfig.BackupSchedule, work.JobParams{
		Name:    BACKUP_DB_JOB,
		Handler: BACKUP_DB_JOB,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
}

func (srv *Server) sendSms(args map[string]interface{}) error {
	to, ok := args["to"].(string)
	if !ok || to == "" {
		return fmt.Errorf("sendSms: missing 'to' arg")
	}

	message, ok := args["message"].(string)
	if !ok || message == "" {
		return fmt.Errorf("sendSms: missing 'message' arg")
	}

	return srv.services.Messenger.SendMessage(to, message)
}

func (srv *Server) backupSqliteDb(map[string]interface{}) error {
	if srv.services.BackupStorage == nil {
		return fmt.Errorf("backupSqliteDb: no backup storage configured")
	}

	dbFilePath := srv.store.SqliteFilePath()
	if dbFilePath == "" {
		return fmt.Errorf("backupSqliteDb: store is not backed by sqlite")
	}

	exists, err := utils.FileExist(dbFilePath)
	if err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}
	if !exists {
		return fmt.Errorf("backupSqliteDb: %v does not exist", dbFilePath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), BACKUP_TIMEOUT)
	defer cancel()

	object := path.Join(srv.storageConfig.Prefix, filepath.Base(dbFilePath))
	err = srv.services.BackupStorage.UploadFile(ctx, srv.storageConfig.Bucket, object, dbFilePath)
	if err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}

	logg.Infof("Uploaded db backup to %v/%v", srv.storageConfig.Bucket, object)
	return nil
}
