package detect

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/types"
)

// Frameworks returns the framework tags found in deps.
func Frameworks(deps []string) []string {
	tags := Match(FrameworkTable, deps)
	debug.LogDetect("Frameworks from %d dependency strings: %v", len(deps), tags)
	return nonNil(tags)
}

// Databases returns the database technologies found in deps, in
// docker-compose service images and in a Prisma schema. Table names are
// the resolved query tables plus Prisma model names.
func Databases(root string, deps, paths []string, queries []types.QueryFact) []types.DatabaseInfo {
	tags := Match(DatabaseTable, deps)

	for _, rel := range paths {
		switch path.Base(rel) {
		case "docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml":
			tags = appendUnique(tags, Match(DatabaseTable, composeImages(filepath.Join(root, filepath.FromSlash(rel))))...)
		}
	}

	var models []string
	if schema := findBase(paths, "schema.prisma"); schema != "" {
		var provider string
		provider, models = parsePrisma(filepath.Join(root, filepath.FromSlash(schema)))
		tags = appendUnique(tags, "Prisma")
		if tag, ok := prismaProviders[provider]; ok {
			tags = appendUnique(tags, tag)
		}
	}

	var queryTables []string
	for _, q := range queries {
		if q.TableNameOrUnknown != "" && q.TableNameOrUnknown != types.UnknownTable {
			queryTables = appendUnique(queryTables, q.TableNameOrUnknown)
		}
	}

	out := make([]types.DatabaseInfo, 0, len(tags))
	for _, tag := range tags {
		tables := append([]string{}, queryTables...)
		if tag == "Prisma" {
			tables = appendUnique(tables, models...)
		}
		out = append(out, types.DatabaseInfo{TypeTag: tag, TableNames: tables})
	}
	debug.LogDetect("Databases: %v", tags)
	return out
}

// Deployments returns the deployment platforms signalled by marker files.
// A serverless.yml also names its cloud provider.
func Deployments(root string, paths []string) []types.DeploymentTarget {
	tags := Match(DeploymentTable, anchored(paths))

	for _, rel := range paths {
		switch path.Base(rel) {
		case "serverless.yml", "serverless.yaml":
			if tag := serverlessProvider(filepath.Join(root, filepath.FromSlash(rel))); tag != "" {
				tags = appendUnique(tags, tag)
			}
		}
	}

	out := make([]types.DeploymentTarget, 0, len(tags))
	for _, tag := range tags {
		out = append(out, types.DeploymentTarget{PlatformTag: tag})
	}
	debug.LogDetect("Deployment targets: %v", tags)
	return out
}

// Markers returns the paths that match a deployment rule, sorted.
func Markers(paths []string) []string {
	var out []string
	for _, rel := range paths {
		if len(Match(DeploymentTable, []string{"/" + rel})) > 0 {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out
}

func anchored(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = "/" + p
	}
	return out
}

type composeFile struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

// composeImages returns the image names of every service in a compose file,
// ordered by service name.
func composeImages(file string) []string {
	data, err := os.ReadFile(file)
	if err != nil {
		debug.LogDetect("Cannot read %s: %v", file, err)
		return nil
	}
	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		debug.LogDetect("Cannot parse %s: %v", file, err)
		return nil
	}

	names := make([]string, 0, len(cf.Services))
	for name := range cf.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	images := make([]string, 0, len(names))
	for _, name := range names {
		if img := cf.Services[name].Image; img != "" {
			images = append(images, strings.ToLower(img))
		}
	}
	return images
}

// serverlessProvider reads provider.name, or a bare provider string, from a
// serverless.yml.
func serverlessProvider(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	var doc struct {
		Provider yaml.Node `yaml:"provider"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		debug.LogDetect("Cannot parse %s: %v", file, err)
		return ""
	}

	var name string
	switch doc.Provider.Kind {
	case yaml.ScalarNode:
		name = doc.Provider.Value
	case yaml.MappingNode:
		var p struct {
			Name string `yaml:"name"`
		}
		if err := doc.Provider.Decode(&p); err == nil {
			name = p.Name
		}
	}
	return serverlessProviders[strings.ToLower(strings.TrimSpace(name))]
}

var (
	prismaModel    = regexp.MustCompile(`^\s*model\s+(\w+)\s*\{`)
	prismaBlock    = regexp.MustCompile(`^\s*datasource\s+\w+\s*\{`)
	prismaProvider = regexp.MustCompile(`^\s*provider\s*=\s*"(\w+)"`)
)

// parsePrisma returns the datasource provider and the model names declared
// in a Prisma schema.
func parsePrisma(file string) (provider string, models []string) {
	f, err := os.Open(file)
	if err != nil {
		debug.LogDetect("Cannot read %s: %v", file, err)
		return "", nil
	}
	defer f.Close()

	inDatasource := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case prismaBlock.MatchString(line):
			inDatasource = true
		case inDatasource && strings.HasPrefix(strings.TrimSpace(line), "}"):
			inDatasource = false
		case inDatasource && provider == "":
			if m := prismaProvider.FindStringSubmatch(line); m != nil {
				provider = strings.ToLower(m[1])
			}
		default:
			if m := prismaModel.FindStringSubmatch(line); m != nil {
				models = append(models, m[1])
			}
		}
	}
	return provider, models
}

func findBase(paths []string, base string) string {
	for _, p := range paths {
		if path.Base(p) == base {
			return p
		}
	}
	return ""
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, have := range list {
			if have == it {
				found = true
				break
			}
		}
		if !found {
			list = append(list, it)
		}
	}
	return list
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
