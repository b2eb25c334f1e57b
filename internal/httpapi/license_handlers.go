package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kimlik.org/internal/authz"
	"kimlik.org/internal/directory"
	"kimlik.org/internal/stream"
)

type signedResponse struct {
	LicenseID int64 `json:"license_id"`
	PersonID  int64 `json:"person_id"`
	Signed    bool  `json:"signed"`
}

func (a *API) handleLicensesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	licenses, err := a.dir.Licenses(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, licenses)
}

func (a *API) handleLicenseResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/licenses/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "license id must be an integer")
		return
	}

	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		license, err := a.dir.LicenseByID(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, license)
	case 2:
		if parts[1] != "signed" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleSignature(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// handleSignature reads or creates the caller's signature for a license.
// Signing is always on behalf of the authenticated principal.
func (a *API) handleSignature(w http.ResponseWriter, r *http.Request, licenseID int64) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		signed, err := a.dir.IsLicenseSigned(r.Context(), licenseID, principal.Person.ID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, signedResponse{
			LicenseID: licenseID,
			PersonID:  principal.Person.ID,
			Signed:    signed,
		})
	case http.MethodPost:
		if err := a.dir.SignLicense(r.Context(), licenseID, principal.Person.ID); err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		a.audit(r.Context(), "license.sign", "license", strconv.FormatInt(licenseID, 10), map[string]string{
			"person_id": strconv.FormatInt(principal.Person.ID, 10),
		})
		a.recordActivity(r.Context(), directory.Activity{
			PersonID:   principal.Person.ID,
			Event:      "license.sign",
			Detail:     strconv.FormatInt(licenseID, 10),
			OccurredAt: time.Now().UTC(),
		})
		if a.stream != nil {
			a.stream.Publish(stream.ActivityEvent{
				Username: principal.Person.Username,
				Event:    "license.sign",
				Detail:   strconv.FormatInt(licenseID, 10),
			})
		}
		writeJSON(w, http.StatusCreated, signedResponse{
			LicenseID: licenseID,
			PersonID:  principal.Person.ID,
			Signed:    true,
		})
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
