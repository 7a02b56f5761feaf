// Package detect derives framework, database and deployment tags from the
// dependency strings and file paths gathered during analysis.
package detect

import "strings"

// Rule adds Tag when Keyword occurs in a haystack string.
type Rule struct {
	Keyword string
	Tag     string
}

// Table is an ordered list of rules. Adding a detectable technology is a
// new row, not new code.
type Table []Rule

// Match returns the tags of every rule whose keyword is a substring of any
// haystack string. Tags are unique and ordered by first match, scanning the
// haystack in order and the table in order for each string.
func Match(table Table, haystack []string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, s := range haystack {
		for _, r := range table {
			if seen[r.Tag] || !strings.Contains(s, r.Keyword) {
				continue
			}
			seen[r.Tag] = true
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// FrameworkTable maps dependency keywords to framework tags.
var FrameworkTable = Table{
	{"next", "Next.js"},
	{"nuxt", "Nuxt"},
	{"react", "React"},
	{"vue", "Vue"},
	{"svelte", "Svelte"},
	{"@angular/core", "Angular"},
	{"solid-js", "Solid"},
	{"preact", "Preact"},
	{"@remix-run", "Remix"},
	{"astro", "Astro"},
	{"gatsby", "Gatsby"},
	{"@builder.io/qwik", "Qwik"},
	{"express", "Express"},
	{"fastify", "Fastify"},
	{"koa", "Koa"},
	{"@nestjs", "NestJS"},
	{"hono", "Hono"},
	{"electron", "Electron"},
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
	{"gin-gonic/gin", "Gin"},
	{"labstack/echo", "Echo"},
	{"gofiber/fiber", "Fiber"},
	{"go-chi/chi", "Chi"},
	{"actix-web", "Actix"},
	{"axum", "Axum"},
	{"rocket", "Rocket"},
	{"springframework", "Spring"},
	{"laravel", "Laravel"},
	{"tailwindcss", "Tailwind CSS"},
}

// frontendTags are the framework tags that render UI in the browser.
var frontendTags = map[string]bool{
	"React":   true,
	"Next.js": true,
	"Vue":     true,
	"Nuxt":    true,
	"Svelte":  true,
	"Angular": true,
	"Solid":   true,
	"Preact":  true,
	"Remix":   true,
	"Astro":   true,
	"Gatsby":  true,
	"Qwik":    true,
}

// IsFrontend reports whether tag names a frontend framework.
func IsFrontend(tag string) bool {
	return frontendTags[tag]
}

// serverTags are the framework tags that serve HTTP routes.
var serverTags = map[string]bool{
	"Express": true,
	"Fastify": true,
	"Koa":     true,
	"NestJS":  true,
	"Hono":    true,
	"Django":  true,
	"Flask":   true,
	"FastAPI": true,
	"Gin":     true,
	"Echo":    true,
	"Fiber":   true,
	"Chi":     true,
	"Actix":   true,
	"Axum":    true,
	"Rocket":  true,
	"Spring":  true,
	"Laravel": true,
}

// IsServer reports whether tag names an HTTP server framework.
func IsServer(tag string) bool {
	return serverTags[tag]
}

// DatabaseTable maps dependency keywords, and docker image names, to
// database tags.
var DatabaseTable = Table{
	{"postgres", "PostgreSQL"},
	{"pgx", "PostgreSQL"},
	{"psycopg", "PostgreSQL"},
	{"mysql", "MySQL"},
	{"mariadb", "MariaDB"},
	{"sqlite", "SQLite"},
	{"mongo", "MongoDB"},
	{"redis", "Redis"},
	{"prisma", "Prisma"},
	{"typeorm", "TypeORM"},
	{"sequelize", "Sequelize"},
	{"drizzle-orm", "Drizzle"},
	{"knex", "Knex"},
	{"sqlalchemy", "SQLAlchemy"},
	{"gorm.io", "GORM"},
	{"diesel", "Diesel"},
	{"firebase", "Firebase"},
	{"@supabase", "Supabase"},
	{"dynamodb", "DynamoDB"},
	{"cassandra", "Cassandra"},
	{"elasticsearch", "Elasticsearch"},
}

// DeploymentTable matches marker files. Haystack strings are "/" followed
// by the project-relative path, so each keyword anchors on a path segment.
var DeploymentTable = Table{
	{"/vercel.json", "Vercel"},
	{"/netlify.toml", "Netlify"},
	{"/Dockerfile", "Docker"},
	{"/docker-compose.yml", "Docker Compose"},
	{"/docker-compose.yaml", "Docker Compose"},
	{"/fly.toml", "Fly.io"},
	{"/render.yaml", "Render"},
	{"/Procfile", "Heroku"},
	{"/serverless.yml", "Serverless"},
	{"/serverless.yaml", "Serverless"},
	{"/app.yaml", "Google App Engine"},
	{"/.github/workflows/", "GitHub Actions"},
}

// serverlessProviders maps serverless.yml provider names to platform tags.
var serverlessProviders = map[string]string{
	"aws":    "AWS Lambda",
	"google": "Google Cloud Functions",
	"azure":  "Azure Functions",
}

// prismaProviders maps Prisma datasource providers to database tags.
var prismaProviders = map[string]string{
	"postgresql":  "PostgreSQL",
	"postgres":    "PostgreSQL",
	"mysql":       "MySQL",
	"sqlite":      "SQLite",
	"mongodb":     "MongoDB",
	"sqlserver":   "SQL Server",
	"cockroachdb": "CockroachDB",
}
