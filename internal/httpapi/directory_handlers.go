package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kimlik.org/internal/directory"
	"kimlik.org/internal/stream"
)

type listPeopleResponse struct {
	Items []directory.Person `json:"items"`
	Total int                `json:"total"`
}

type listGroupsResponse struct {
	Items []directory.Group `json:"items"`
	Total int               `json:"total"`
}

type recordActivityRequest struct {
	Event  string `json:"event"`
	Detail string `json:"detail"`
}

func (a *API) handlePeopleCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	if email := strings.TrimSpace(q.Get("email")); email != "" {
		person, err := a.dir.PersonByEmail(r.Context(), email)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, person)
		return
	}
	if nick := strings.TrimSpace(q.Get("ircnick")); nick != "" {
		person, err := a.dir.PersonByIRCNick(r.Context(), nick)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, person)
		return
	}

	page, err := parseListPage(q.Get("page"), q.Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.dir.ListPeople(r.Context(), page)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	total, err := a.dir.CountPeople(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listPeopleResponse{Items: items, Total: total})
}

func (a *API) handlePersonResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/people/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if path == "usernames" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		entries, err := a.dir.PeopleUsernames(r.Context())
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	parts := strings.Split(path, "/")
	username := parts[0]
	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		person, err := a.dir.PersonByUsername(r.Context(), username)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, person)
	case 2:
		switch parts[1] {
		case "groups":
			a.personGroups(w, r, username)
		case "permissions":
			a.personPermissions(w, r, username)
		case "activities":
			a.personActivities(w, r, username)
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
		}
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) personGroups(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	groups, err := a.dir.GroupsForPerson(r.Context(), username)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *API) personPermissions(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	person, err := a.dir.PersonByUsername(r.Context(), username)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	perms, err := a.dir.PermissionsForPerson(r.Context(), person.ID)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

func (a *API) personActivities(w http.ResponseWriter, r *http.Request, username string) {
	person, err := a.dir.PersonByUsername(r.Context(), username)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		items, err := a.dir.AccountActivities(r.Context(), person.ID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		if !a.requireSelf(w, r, username) {
			return
		}
		var req recordActivityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entry := directory.Activity{
			PersonID:   person.ID,
			Event:      strings.TrimSpace(req.Event),
			Detail:     strings.TrimSpace(req.Detail),
			OccurredAt: time.Now().UTC(),
		}
		if err := a.dir.RecordActivity(r.Context(), entry); err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		if a.stream != nil {
			a.stream.Publish(stream.ActivityEvent{
				Username:   username,
				Event:      entry.Event,
				Detail:     entry.Detail,
				OccurredAt: entry.OccurredAt,
			})
		}
		writeJSON(w, http.StatusCreated, entry)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGroupsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := r.URL.Query()
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		group, err := a.dir.GroupByName(r.Context(), name)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
		return
	}
	if q.Get("top_level") == "true" {
		groups, err := a.dir.CandidateParentGroups(r.Context())
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}

	page, err := parseListPage(q.Get("page"), q.Get("limit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, err := a.dir.ListGroups(r.Context(), page)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	total, err := a.dir.CountGroups(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listGroupsResponse{Items: items, Total: total})
}

func (a *API) handleGroupResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/groups/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "group id must be an integer")
		return
	}

	switch len(parts) {
	case 1:
		group, err := a.dir.GroupByID(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	case 2:
		switch parts[1] {
		case "members":
			members, err := a.dir.GroupMembers(r.Context(), id)
			if err != nil {
				handleDirectoryError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, members)
		case "children":
			children, err := a.dir.ChildGroups(r.Context(), id)
			if err != nil {
				handleDirectoryError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, children)
		case "ancestors":
			ancestors, err := a.dir.GroupAncestors(r.Context(), id)
			if err != nil {
				handleDirectoryError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, ancestors)
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
		}
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleMemberships(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	groupName := strings.TrimSpace(r.URL.Query().Get("group"))
	if username == "" || groupName == "" {
		writeError(w, r, http.StatusBadRequest, "username and group query parameters are required")
		return
	}
	membership, err := a.dir.Membership(r.Context(), username, groupName)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (a *API) handleAccountStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		status, err := a.dir.AccountStatusByName(r.Context(), name)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}
	statuses, err := a.dir.AccountStatuses(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (a *API) handleRoleLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	roles, err := a.dir.RoleLevels(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (a *API) handleGroupTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	types, err := a.dir.GroupTypes(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (a *API) handleGroupTypeResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/group-types/"), "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "group type id must be an integer")
		return
	}
	gt, err := a.dir.GroupTypeByID(r.Context(), id)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gt)
}

func parseListPage(pageRaw, limitRaw string) (directory.ListPage, error) {
	var page directory.ListPage
	if strings.TrimSpace(pageRaw) == "" && strings.TrimSpace(limitRaw) == "" {
		return page, nil
	}
	var err error
	if strings.TrimSpace(pageRaw) != "" {
		page.Page, err = strconv.Atoi(pageRaw)
		if err != nil {
			return page, errors.New("page must be an integer")
		}
	}
	if strings.TrimSpace(limitRaw) != "" {
		page.Limit, err = strconv.Atoi(limitRaw)
		if err != nil {
			return page, errors.New("limit must be an integer")
		}
	}
	if page.Limit < 0 || page.Limit > 1000 {
		return page, errors.New("limit must be between 1 and 1000")
	}
	return page, nil
}
