package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/dialect"
)

const fixture = `
databases:
  default:
    engine: django.db.backends.postgresql
    name: shop
    user: alice
    password: secret
  cache:
    engine: sqlite
    name: cache.db
  legacy:
    engine: shop.backends.pg
    name: legacy
    host: db.internal
    port: 5433
    conn_max_age: 5m
    max_open_conns: 4
engines:
  postgresql: [shop.backends.pg]
admin:
  limit: 10
  cache:
    size: 256
    ttl: 30s
  rate_limit:
    rate: 5
    burst: 10
  cors_origins: ["https://shop.example.com"]
  metrics: true
  slow_query: 250ms
  models:
    - app: shop
      model: Customer
      label: name
      search_fields: [name, "^email"]
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(fixture))
	require.NoError(t, err)

	assert.Equal(t, []string{"cache", "default", "legacy"}, s.Aliases())

	db, err := s.Database(DefaultDBAlias)
	require.NoError(t, err)
	assert.Equal(t, Database{
		Engine:   "django.db.backends.postgresql",
		Name:     "shop",
		User:     "alice",
		Password: "secret",
	}, db)
	assert.Equal(t, "localhost", db.HostOrDefault())

	legacy, err := s.Database("legacy")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", legacy.HostOrDefault())
	assert.Equal(t, 5433, legacy.Port)
	assert.Equal(t, 5*time.Minute, legacy.ConnMaxAge)
	assert.Equal(t, 4, legacy.MaxOpenConns)

	cl := s.Classifier()
	assert.Equal(t, dialect.ClassPostgres, cl.Classify(legacy.Engine))
	assert.Equal(t, dialect.ClassSQLite, cl.Classify("sqlite"))

	require.Len(t, s.Admin.Models, 1)
	assert.Equal(t, []string{"name", "^email"}, s.Admin.Models[0].SearchFields)
	assert.Equal(t, 10, s.Admin.Limit)
	assert.Equal(t, Cache{Size: 256, TTL: 30 * time.Second}, s.Admin.Cache)
	assert.Equal(t, RateLimit{Rate: 5, Burst: 10}, s.Admin.RateLimit)
	assert.Equal(t, []string{"https://shop.example.com"}, s.Admin.CORSOrigins)
	assert.True(t, s.Admin.Metrics)
	assert.Equal(t, 250*time.Millisecond, s.Admin.SlowQuery)
}

func TestUnknownDatabase(t *testing.T) {
	s, err := Parse([]byte(fixture))
	require.NoError(t, err)

	_, err = s.Database("replica")
	require.Error(t, err)
	assert.True(t, veloxext.IsConfigError(err))
	assert.Equal(t, "Unknown database replica", err.Error())

	var empty *Settings
	_, err = empty.Database(DefaultDBAlias)
	assert.True(t, veloxext.IsConfigError(err))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("databases: ["))
	require.Error(t, err)

	_, err = Parse([]byte("engines:\n  oracle: [x]\n"))
	require.ErrorContains(t, err, `unknown engine class "oracle"`)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "MissingName",
			yaml: "databases:\n  default:\n    engine: sqlite3\n",
			want: "settings: databases[default].name is required",
		},
		{
			name: "Port",
			yaml: "databases:\n  default:\n    engine: mysql\n    name: shop\n    port: 70000\n",
			want: "settings: databases[default].port must be at most 65535",
		},
		{
			name: "ModelWithoutApp",
			yaml: "admin:\n  models:\n    - model: Customer\n",
			want: "settings: admin.models[0].app is required",
		},
		{
			name: "NegativeRate",
			yaml: "admin:\n  rate_limit:\n    rate: -1\n",
			want: "settings: admin.rate_limit.rate must be at least 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, veloxext.IsConfigError(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Databases, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
