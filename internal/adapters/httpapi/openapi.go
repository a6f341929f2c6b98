package httpapi

import (
	"net/http"

	"github.com/salam-labs/adzan/internal/httpjson"
)

// handleOpenAPI renvoie la description OpenAPI de /api/v1.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}
	jsonBody := func(schemaRef string) map[string]any {
		return map[string]any{
			"required": true,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}
	queryInt := func(name, description string) map[string]any {
		return map[string]any{"name": name, "in": "query", "required": false, "description": description, "schema": map[string]any{"type": "integer"}}
	}
	queryNumber := func(name string) map[string]any {
		return map[string]any{"name": name, "in": "query", "required": false, "schema": map[string]any{"type": "number", "format": "double"}}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	prayerKey := map[string]any{"$ref": "#/components/schemas/PrayerKey"}
	clock := map[string]any{"type": "string", "pattern": "^[0-2][0-9]:[0-5][0-9]$", "example": "04:40"}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Adzan API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"OpenAPIDocument": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
						"code":  map[string]any{"type": "string", "enum": []any{"location_not_set", "invalid_params", "http_status", "network_error", "invalid_payload"}},
					},
					"required": []any{"error"},
				},
				"PrayerKey": map[string]any{
					"type": "string",
					"enum": []any{"Imsak", "Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"},
				},
				"Timings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"Imsak": clock, "Fajr": clock, "Dhuhr": clock, "Asr": clock, "Maghrib": clock, "Isha": clock,
					},
					"required": []any{"Imsak", "Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"},
				},
				"HijriDate": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day":     map[string]any{"type": "string"},
						"month":   map[string]any{"type": "string"},
						"monthAr": map[string]any{"type": "string"},
						"year":    map[string]any{"type": "string"},
					},
				},
				"DailySchedule": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"date":      map[string]any{"type": "string", "format": "date"},
						"readable":  map[string]any{"type": "string"},
						"hijri":     map[string]any{"$ref": "#/components/schemas/HijriDate"},
						"timezone":  map[string]any{"type": "string"},
						"timings":   map[string]any{"$ref": "#/components/schemas/Timings"},
						"source":    map[string]any{"type": "string", "enum": []any{"aladhan", "cache", "fallback"}},
						"fetchedAt": map[string]any{"type": "string", "format": "date-time"},
					},
					"required": []any{"date", "timings", "source"},
				},
				"DailyScheduleList": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/DailySchedule"},
				},
				"NextPrayer": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":              prayerKey,
						"name":             map[string]any{"type": "string"},
						"time":             clock,
						"remainingLabel":   map[string]any{"type": "string", "description": "-{h}j {m}m, -{m}m ou Besok", "example": "-2j 44m"},
						"remainingMinutes": map[string]any{"type": "integer"},
						"tomorrow":         map[string]any{"type": "boolean"},
					},
					"required": []any{"key", "name", "time", "remainingLabel"},
				},
				"PrayerStatus": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":   prayerKey,
						"name":  map[string]any{"type": "string"},
						"time":  clock,
						"label": map[string]any{"type": "string", "example": "12m lalu"},
						"now":   map[string]any{"type": "boolean"},
					},
				},
				"Today": map[string]any{
					"allOf": []any{
						map[string]any{"$ref": "#/components/schemas/DailySchedule"},
						map[string]any{
							"type": "object",
							"properties": map[string]any{
								"now":        map[string]any{"type": "string", "format": "date-time"},
								"hijriLabel": map[string]any{"type": "string", "example": "18 Sha'ban 1447 H"},
								"place":      map[string]any{"$ref": "#/components/schemas/Location"},
								"active":     prayerKey,
								"activeName": map[string]any{"type": "string"},
								"next":       map[string]any{"$ref": "#/components/schemas/NextPrayer"},
								"prayers": map[string]any{
									"type":  "array",
									"items": map[string]any{"$ref": "#/components/schemas/PrayerStatus"},
								},
							},
						},
					},
				},
				"RefreshResult": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"schedule": map[string]any{"$ref": "#/components/schemas/DailySchedule"},
						"warning":  map[string]any{"type": "string"},
					},
				},
				"Location": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"latitude":  map[string]any{"type": "number", "minimum": -90, "maximum": 90},
						"longitude": map[string]any{"type": "number", "minimum": -180, "maximum": 180},
						"city":      map[string]any{"type": "string"},
						"country":   map[string]any{"type": "string"},
					},
					"required": []any{"latitude", "longitude"},
				},
				"LocationUpdate": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"settings": map[string]any{"$ref": "#/components/schemas/Settings"},
						"schedule": map[string]any{"$ref": "#/components/schemas/DailySchedule"},
						"warning":  map[string]any{"type": "string"},
					},
				},
				"Settings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"location":             map[string]any{"$ref": "#/components/schemas/Location"},
						"method":               map[string]any{"type": "integer", "description": "Méthode aladhan (11 = Kemenag RI)"},
						"timezone":             map[string]any{"type": "string", "example": "Asia/Jakarta"},
						"notificationsEnabled": map[string]any{"type": "boolean"},
						"adzanMuted":           map[string]any{"type": "boolean"},
						"readingReminders":     map[string]any{"type": "boolean"},
					},
					"additionalProperties": false,
				},
				"LastRead": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"surahNumber": map[string]any{"type": "integer", "minimum": 1, "maximum": 114},
						"surahName":   map[string]any{"type": "string"},
						"ayah":        map[string]any{"type": "integer", "minimum": 0},
						"updatedAt":   map[string]any{"type": "string", "format": "date-time"},
					},
					"required": []any{"surahNumber", "surahName"},
				},
				"Notification": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":      map[string]any{"type": "string"},
						"kind":    map[string]any{"type": "string", "enum": []any{"prayer", "reading"}},
						"prayer":  prayerKey,
						"title":   map[string]any{"type": "string"},
						"message": map[string]any{"type": "string"},
						"adzan":   map[string]any{"type": "string", "enum": []any{"subuh", "regular"}},
						"firedAt": map[string]any{"type": "string", "format": "date-time"},
					},
					"required": []any{"id", "kind", "title", "message", "firedAt"},
				},
				"NotificationList": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/Notification"},
				},
				"Qibla": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"from":      map[string]any{"$ref": "#/components/schemas/Location"},
						"bearing":   map[string]any{"type": "number", "description": "Degrés depuis le nord géographique"},
						"direction": map[string]any{"type": "string", "enum": []any{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}},
					},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/openapi.json": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/OpenAPIDocument")}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{
					"parameters": []any{
						map[string]any{"name": "topics", "in": "query", "required": false, "description": "Liste séparée par des virgules (ex: prayer.due,reading.due)", "schema": map[string]any{"type": "string"}},
					},
					"responses": map[string]any{"200": map[string]any{"description": "SSE"}},
				},
			},
			"/api/v1/prayer/today": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Today")}},
			},
			"/api/v1/prayer/next": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/NextPrayer")}},
			},
			"/api/v1/prayer/monthly": map[string]any{
				"get": map[string]any{
					"parameters": []any{queryInt("month", "1..12, mois courant par défaut"), queryInt("year", "année courante par défaut")},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/DailyScheduleList"),
						"400": jsonErr,
						"409": jsonErr,
						"502": jsonErr,
					},
				},
			},
			"/api/v1/prayer/refresh": map[string]any{
				"post": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/RefreshResult")}},
			},
			"/api/v1/settings": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Settings"),
						"500": jsonErr,
					},
				},
				"put": map[string]any{
					"requestBody": jsonBody("#/components/schemas/Settings"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Settings"),
						"400": jsonErr,
						"500": jsonErr,
					},
				},
			},
			"/api/v1/location": map[string]any{
				"put": map[string]any{
					"requestBody": jsonBody("#/components/schemas/Location"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/LocationUpdate"),
						"400": jsonErr,
						"500": jsonErr,
					},
				},
			},
			"/api/v1/qibla": map[string]any{
				"get": map[string]any{
					"parameters": []any{queryNumber("lat"), queryNumber("lng")},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Qibla"),
						"400": jsonErr,
						"409": jsonErr,
					},
				},
			},
			"/api/v1/last-read": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/LastRead"),
						"204": map[string]any{"description": "Aucune lecture enregistrée"},
					},
				},
				"put": map[string]any{
					"requestBody": jsonBody("#/components/schemas/LastRead"),
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/LastRead"),
						"400": jsonErr,
					},
				},
			},
			"/api/v1/notifications": map[string]any{
				"get": map[string]any{
					"parameters": []any{queryInt("limit", "50 par défaut")},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/NotificationList"),
						"500": jsonErr,
					},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
