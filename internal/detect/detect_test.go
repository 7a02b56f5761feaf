package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/types"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestMatch(t *testing.T) {
	table := Table{{"alpha", "A"}, {"beta", "B"}, {"alp", "A"}}

	assert.Equal(t, []string{"B", "A"}, Match(table, []string{"x-beta", "alpha", "alpine"}))
	assert.Empty(t, Match(table, nil))
	assert.Empty(t, Match(nil, []string{"alpha"}))
}

func TestFrameworks(t *testing.T) {
	tests := []struct {
		name string
		deps []string
		want []string
	}{
		{"react app", []string{"react", "react-dom", "commander"}, []string{"React"}},
		{"next", []string{"next", "react"}, []string{"Next.js", "React"}},
		{"express api", []string{"./db", "express", "cors"}, []string{"Express"}},
		{"go module", []string{"github.com/gin-gonic/gin", "gorm.io/gorm"}, []string{"Gin"}},
		{"python", []string{"flask", "sqlalchemy"}, []string{"Flask"}},
		{"nothing", []string{"lodash"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Frameworks(tt.deps))
		})
	}
}

func TestIsFrontend(t *testing.T) {
	assert.True(t, IsFrontend("React"))
	assert.True(t, IsFrontend("Svelte"))
	assert.False(t, IsFrontend("Express"))
	assert.False(t, IsFrontend("react"))
	assert.True(t, IsServer("Express"))
	assert.False(t, IsServer("React"))
}

func TestDatabasesFromDependencies(t *testing.T) {
	dbs := Databases(t.TempDir(), []string{"pg", "mongoose", "ioredis", "mongodb"}, nil, []types.QueryFact{
		{OperationKind: "query", TableNameOrUnknown: types.UnknownTable},
	})

	require.Len(t, dbs, 2)
	assert.Equal(t, "MongoDB", dbs[0].TypeTag)
	assert.Equal(t, "Redis", dbs[1].TypeTag)
	assert.Empty(t, dbs[0].TableNames)
	assert.NotNil(t, dbs[0].TableNames)
}

func TestDatabasesFromComposeAndPrisma(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"docker-compose.yml": `
services:
  web:
    build: .
  db:
    image: postgres:16
  cache:
    image: redis:7-alpine
`,
		"prisma/schema.prisma": `
datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

model User {
  id    Int    @id
  email String
}

model Post {
  id Int @id
}
`,
	})
	paths := []string{"docker-compose.yml", "prisma/schema.prisma"}

	dbs := Databases(root, []string{"@prisma/client"}, paths, nil)
	tags := make([]string, 0, len(dbs))
	for _, db := range dbs {
		tags = append(tags, db.TypeTag)
	}
	// compose services are read in name order: cache before db
	assert.Equal(t, []string{"Prisma", "Redis", "PostgreSQL"}, tags)
	assert.Equal(t, []string{"User", "Post"}, dbs[0].TableNames)
	assert.Empty(t, dbs[1].TableNames)
}

func TestDatabasesMalformedCompose(t *testing.T) {
	root := writeFiles(t, map[string]string{"docker-compose.yml": "services: [unterminated"})
	assert.Empty(t, Databases(root, nil, []string{"docker-compose.yml"}, nil))
}

func TestDeployments(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"serverless.yml":              "service: api\nprovider:\n  name: aws\n  runtime: nodejs20.x\n",
		"Dockerfile":                  "FROM node:20",
		".github/workflows/ci.yml":    "on: push",
		"src/index.ts":                "export {}",
		"services/worker/fly.toml":    "app = 'w'",
		"config/notes-Dockerfile.txt": "not a marker",
	})
	paths := []string{
		".github/workflows/ci.yml",
		"Dockerfile",
		"config/notes-Dockerfile.txt",
		"serverless.yml",
		"services/worker/fly.toml",
		"src/index.ts",
	}

	var tags []string
	for _, d := range Deployments(root, paths) {
		tags = append(tags, d.PlatformTag)
	}
	assert.Equal(t, []string{"GitHub Actions", "Docker", "Serverless", "Fly.io", "AWS Lambda"}, tags)
}

func TestServerlessProviderScalar(t *testing.T) {
	root := writeFiles(t, map[string]string{"serverless.yml": "provider: google\n"})
	assert.Equal(t, "Google Cloud Functions", serverlessProvider(filepath.Join(root, "serverless.yml")))
}

func TestMarkers(t *testing.T) {
	paths := []string{"src/app.ts", "vercel.json", "Procfile", ".github/workflows/deploy.yml"}
	assert.Equal(t, []string{".github/workflows/deploy.yml", "Procfile", "vercel.json"}, Markers(paths))
}
