package navigation

import (
	"encoding/json"
	"strconv"
)

// View types a detail panel can open as.
const (
	ViewForm = "form"
	ViewChat = "chat"
)

// Base route families. Admin-prefixed variants are derived by the Bus.
const (
	RouteOffers   = "/ofertas"
	RouteProjects = "/projects"
)

// Params carries the raw deep-link parameters as they arrive from the
// notification payload. ID stays a string here; coercion happens at dispatch.
type Params struct {
	ID             string
	ViewType       string
	NotificationID string
}

// Target is a notification's intended destination before role rewriting.
type Target struct {
	Route  string
	Params Params
}

// TargetFromNotification maps a notification kind and its data document to a
// navigation target. It reports false when the notification carries nothing
// navigable. Routes are the plain-user bases; the Bus prefixes them for
// admin-access roles.
//
// data is a decoded JSON object, so ids may arrive as numbers or strings.
func TargetFromNotification(kind string, data map[string]any) (Target, bool) {
	switch kind {
	case "new_sale_order":
		id, ok := stringField(data, "sale_order_id")
		if !ok {
			return Target{}, false
		}
		return Target{Route: RouteOffers, Params: Params{ID: id, ViewType: ViewForm}}, true

	case "state_change":
		if id, ok := stringField(data, "sale_order_id"); ok {
			view := ViewForm
			if s, _ := data["new_state"].(string); s == "aprobado" {
				view = ViewChat
			}
			return Target{Route: RouteOffers, Params: Params{ID: id, ViewType: view}}, true
		}
		if id, ok := stringField(data, "project_id"); ok {
			return Target{Route: RouteProjects, Params: Params{ID: id, ViewType: ViewForm}}, true
		}
		return Target{}, false

	case "new_project":
		id, ok := stringField(data, "project_id")
		if !ok {
			return Target{}, false
		}
		return Target{Route: RouteProjects, Params: Params{ID: id, ViewType: ViewForm}}, true

	case "new_chat":
		// Chat threads hang off an offer, so the target is the offers page
		// opened in chat view.
		id, ok := stringField(data, "sale_order_id")
		if !ok {
			id, ok = stringField(data, "chat_id")
		}
		if !ok {
			return Target{}, false
		}
		return Target{Route: RouteOffers, Params: Params{ID: id, ViewType: ViewChat}}, true

	default:
		route, ok := data["navigation_route"].(string)
		if !ok || route == "" {
			return Target{}, false
		}
		view, _ := data["view_type"].(string)
		if view == "" {
			view = ViewForm
		}
		id, _ := stringField(data, "navigation_id")
		return Target{Route: route, Params: Params{ID: id, ViewType: view}}, true
	}
}

// stringField pulls a field that may be a JSON string or number.
func stringField(data map[string]any, key string) (string, bool) {
	switch v := data[key].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// coerceID parses a deep-link id best-effort. A non-numeric id yields 0 and
// no error surfaces to the caller; a broken deep link degrades to opening the
// list instead of aborting navigation.
func coerceID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
