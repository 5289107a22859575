package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mch/mch/internal/platform/auth"
)

const apiPrefix = "/api/v1/"

// AuditEntry describes one access to patient or account data.
type AuditEntry struct {
	AccountID  string
	UserType   string
	Resource   string
	ResourceID string
	PatientID  string
	Action     string
	Method     string
	Path       string
	IPAddress  string
	UserAgent  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// Audit logs every call to a data resource under /api/v1 after the handler
// has run, so the entry carries the final status. Auth endpoints are not
// audited here; the account service logs logins itself.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isAuditablePath(req.URL.Path) {
				return next(c)
			}

			err := next(c)

			entry := buildAuditEntry(c, err)
			evt := logger.Info()
			if entry.StatusCode == http.StatusForbidden || entry.StatusCode == http.StatusUnauthorized {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("account_id", entry.AccountID).
				Str("user_type", entry.UserType).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Str("user_agent", entry.UserAgent).
				Int("status", entry.StatusCode).
				Time("at", entry.Timestamp).
				Msg("data_access")

			return err
		}
	}
}

func buildAuditEntry(c echo.Context, err error) AuditEntry {
	req := c.Request()
	path := req.URL.Path
	entry := AuditEntry{
		Resource:   extractResource(path),
		ResourceID: extractResourceID(path),
		PatientID:  extractPatientID(c),
		Action:     httpMethodToAction(req.Method, path),
		Method:     req.Method,
		Path:       path,
		IPAddress:  c.RealIP(),
		UserAgent:  req.UserAgent(),
		StatusCode: responseStatus(c, err),
		Timestamp:  time.Now().UTC(),
	}
	if id := auth.IdentityFromContext(req.Context()); id != nil {
		entry.AccountID = id.AccountID
		entry.UserType = id.UserType
	}
	if rid, ok := c.Get("request_id").(string); ok {
		entry.RequestID = rid
	}
	return entry
}

func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, apiPrefix) {
		return false
	}
	return !strings.HasPrefix(path, apiPrefix+"auth/")
}

// httpMethodToAction maps a request to read, list, create, update or delete.
func httpMethodToAction(method, path string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	if extractResourceID(path) == "" {
		return "list"
	}
	return "read"
}

func pathSegments(path string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, apiPrefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// extractResource returns the first path segment under /api/v1,
// e.g. "patients" for /api/v1/patients/<id>/anc-progress.
func extractResource(path string) string {
	segs := pathSegments(path)
	if len(segs) == 0 {
		return "unknown"
	}
	return segs[0]
}

func extractResourceID(path string) string {
	segs := pathSegments(path)
	if len(segs) > 1 && isUUID(segs[1]) {
		return segs[1]
	}
	return ""
}

// extractPatientID finds the patient a request concerns, from
// /api/v1/patients/<id>/... or a patient_id query parameter.
func extractPatientID(c echo.Context) string {
	segs := pathSegments(c.Request().URL.Path)
	if len(segs) > 1 && segs[0] == "patients" && isUUID(segs[1]) {
		return segs[1]
	}
	if pid := c.QueryParam("patient_id"); isUUID(pid) {
		return pid
	}
	return ""
}

func isUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
