package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

// BackupHandler exposes backup operations to the back office
type BackupHandler struct {
	backups *storage.BackupManager
	logger  *logger.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backups *storage.BackupManager, logger *logger.Logger) *BackupHandler {
	return &BackupHandler{
		backups: backups,
		logger:  logger,
	}
}

// RunBackups snapshots every data file. With ?force=true the per-file
// interval check is skipped.
func (h *BackupHandler) RunBackups(c echo.Context) error {
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	if err := h.backups.BackupAll(c.Request().Context(), force); err != nil {
		h.logger.Errorw("Backup run failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Backup run failed")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Backup completed"})
}

// ListBackups returns backup status, optionally scoped to one data file
// via ?file=investments.json.
func (h *BackupHandler) ListBackups(c echo.Context) error {
	file := c.QueryParam("file")

	names, err := h.backups.ListBackups(file)
	if err != nil {
		h.logger.Errorw("List backups failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "List backups failed")
	}

	status := ports.BackupStatus{File: file, Backups: names}
	if file != "" {
		if t, ok := h.backups.LastBackupTime(c.Request().Context(), file); ok {
			status.LastBackup = &t
		}
	}
	return c.JSON(http.StatusOK, status)
}

// CleanupBackups prunes old snapshots, keeping the N newest per file.
func (h *BackupHandler) CleanupBackups(c echo.Context) error {
	keep := 0
	if v := c.QueryParam("keep"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "keep must be a positive integer")
		}
		keep = n
	}

	if err := h.backups.CleanupOldBackups(keep); err != nil {
		h.logger.Errorw("Backup cleanup failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Backup cleanup failed")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Backup cleanup completed"})
}

// RestoreBackup copies a snapshot back over its data file. The target is
// inferred from the backup name unless given explicitly.
func (h *BackupHandler) RestoreBackup(c echo.Context) error {
	var req ports.RestoreBackupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.backups.RestoreFromBackup(c.Request().Context(), req.Backup, req.Target); err != nil {
		h.logger.Errorw("Restore failed", "error", err, "backup", req.Backup)
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Backup not found")
		}
		if errors.Is(err, storage.ErrLockTimeout) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Data store unavailable")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Restore failed")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Restore completed"})
}
