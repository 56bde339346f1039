package conventions

import "strings"

// Category groups patterns by the kind of fact they classify.
type Category string

const (
	CategoryRoute     Category = "routes"
	CategoryModel     Category = "models"
	CategoryFramework Category = "frameworks"
)

// MatchKind selects how a token is compared against a pattern's markers.
type MatchKind int

const (
	// MatchExact requires the token to equal a marker.
	MatchExact MatchKind = iota
	// MatchContains requires the token to contain a marker.
	MatchContains
)

// Pattern is one row of a marker table
type Pattern struct {
	ID          string
	Name        string // reported value: "GET", "ANY", "flask", ...
	Description string
	Category    Category
	Match       MatchKind
	Markers     []string
}

// Matches reports whether token satisfies any of the pattern's markers.
func (p Pattern) Matches(token string) bool {
	for _, m := range p.Markers {
		switch p.Match {
		case MatchContains:
			if strings.Contains(token, m) {
				return true
			}
		default:
			if token == m {
				return true
			}
		}
	}
	return false
}

func routeVerb(verb string) Pattern {
	return Pattern{
		ID:          "route-" + verb,
		Name:        strings.ToUpper(verb),
		Description: "Decorators ending in '" + verb + "'",
		Category:    CategoryRoute,
		Markers:     []string{verb},
	}
}

func framework(name string, indicators ...string) Pattern {
	return Pattern{
		ID:          "framework-" + name,
		Name:        name,
		Description: "Imports or dependencies indicating " + name,
		Category:    CategoryFramework,
		Markers:     indicators,
	}
}

// DefaultPatterns returns the built-in route, model and framework tables.
// Framework patterns are listed in detection order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// HTTP verb decorators: app.get, router.post, ...
		routeVerb("get"),
		routeVerb("post"),
		routeVerb("put"),
		routeVerb("delete"),
		routeVerb("patch"),
		routeVerb("head"),
		routeVerb("options"),
		{
			ID:          "route-any",
			Name:        "ANY",
			Description: "Generic route markers without a fixed verb",
			Category:    CategoryRoute,
			Markers:     []string{"route", "api_view", "action"},
		},

		// Data model bases, compared against the last dotted segment
		{
			ID:          "model-base",
			Name:        "model",
			Description: "Well-known ORM and schema base classes",
			Category:    CategoryModel,
			Markers:     []string{"Model", "Base", "BaseModel", "DeclarativeBase", "db.Model", "SQLModel"},
		},
		{
			ID:          "model-naming",
			Name:        "model",
			Description: "Bases whose name mentions Model or Schema",
			Category:    CategoryModel,
			Match:       MatchContains,
			Markers:     []string{"Model", "Schema"},
		},

		framework("flask", "Flask", "Blueprint", "flask"),
		framework("fastapi", "FastAPI", "APIRouter", "fastapi"),
		framework("django", "django", "INSTALLED_APPS", "urlpatterns"),
		framework("celery", "Celery", "celery_app", "shared_task"),
		framework("sqlalchemy", "SQLAlchemy", "create_engine", "Session", "declarative_base"),
		framework("pydantic", "BaseModel", "Field", "validator", "pydantic"),
		framework("pytest", "pytest", "fixture", "parametrize"),
	}
}
