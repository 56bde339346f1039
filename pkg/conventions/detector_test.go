package conventions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteMethod(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		decorator string
		want      string
		wantOK    bool
	}{
		{"app.get", "GET", true},
		{"router.post", "POST", true},
		{"bp.PUT", "PUT", true},
		{"api.delete", "DELETE", true},
		{"patch", "PATCH", true},
		{"app.head", "HEAD", true},
		{"app.options", "OPTIONS", true},
		{"app.route", MethodAny, true},
		{"api_view", MethodAny, true},
		{"viewsets.action", MethodAny, true},
		{"login_required", "", false},
		{"app.get_json", "", false},
		{"get.cache", "", false},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.decorator, func(t *testing.T) {
			got, ok := d.RouteMethod(tt.decorator)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsModelBase(t *testing.T) {
	d := NewDetector()

	for _, base := range []string{"Model", "models.Model", "db.Model", "Base", "BaseModel", "pydantic.BaseModel", "DeclarativeBase", "SQLModel", "UserSchema", "ma.SQLAlchemyAutoSchema", "TimestampedModelMixin"} {
		assert.True(t, d.IsModelBase(base), base)
	}
	for _, base := range []string{"object", "Exception", "View", "model", "schema", "Basement"} {
		assert.False(t, d.IsModelBase(base), base)
	}
}

func TestFrameworks(t *testing.T) {
	d := NewDetector()

	got := d.Frameworks(
		map[string]bool{"flask": true, "os": true, "pytest": true},
		map[string]bool{"sqlalchemy": true, "django_rest_framework": true},
	)
	assert.Equal(t, []string{"flask", "pytest", "sqlalchemy"}, got)

	// Indicators are normalized before looking them up in dependencies.
	got = d.Frameworks(nil, map[string]bool{"fastapi": true, "celery": true})
	assert.Equal(t, []string{"celery", "fastapi"}, got)

	// Import matching is case-sensitive and exact.
	got = d.Frameworks(map[string]bool{"Flask": true, "Django": true}, nil)
	assert.Equal(t, []string{"flask"}, got)

	assert.Equal(t, []string{}, d.Frameworks(nil, nil))
}

func TestRegisterPattern(t *testing.T) {
	d := NewDetector()
	d.RegisterPattern(Pattern{
		ID:       "framework-starlette",
		Name:     "starlette",
		Category: CategoryFramework,
		Markers:  []string{"starlette"},
	})

	assert.Equal(t, []string{"starlette"}, d.Frameworks(map[string]bool{"starlette": true}, nil))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Len(t, r.ByCategory(CategoryRoute), 8)
	assert.Len(t, r.ByCategory(CategoryModel), 2)

	var names []string
	for _, p := range r.ByCategory(CategoryFramework) {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"flask", "fastapi", "django", "celery", "sqlalchemy", "pydantic", "pytest"}, names)

	custom := NewDetectorWithRegistry(&Registry{})
	_, ok := custom.RouteMethod("app.get")
	assert.False(t, ok)
}

func TestRegistry_ReplaceByID(t *testing.T) {
	r := NewRegistry()
	before := len(r.Patterns())

	r.Register(Pattern{
		ID:       "framework-flask",
		Name:     "flask",
		Category: CategoryFramework,
		Markers:  []string{"quart"},
	})

	assert.Len(t, r.Patterns(), before)
	frameworks := r.ByCategory(CategoryFramework)
	require.NotEmpty(t, frameworks)
	assert.Equal(t, "flask", frameworks[0].Name)
	assert.Equal(t, []string{"quart"}, frameworks[0].Markers)

	d := NewDetectorWithRegistry(r)
	assert.Equal(t, []string{"flask"}, d.Frameworks(map[string]bool{"quart": true}, nil))
	assert.Equal(t, []string{}, d.Frameworks(map[string]bool{"flask": true}, nil))

	r.Register(Pattern{ID: "route-get", Name: "FETCH", Category: CategoryModel, Match: MatchExact, Markers: []string{"Fetch"}})
	assert.Len(t, r.ByCategory(CategoryRoute), 7)
	assert.Len(t, r.ByCategory(CategoryModel), 3)
}

func TestNormalizeDependency(t *testing.T) {
	assert.Equal(t, "flask_sqlalchemy", NormalizeDependency("Flask-SQLAlchemy"))
	assert.Equal(t, "pydantic", NormalizeDependency("pydantic"))
	assert.Equal(t, "get", LastSegment("app.router.get"))
}
