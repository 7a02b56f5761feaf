package analyzer

import (
	"strings"

	"github.com/standardbeagle/codescribe/internal/detect"
	"github.com/standardbeagle/codescribe/internal/filetype"
	"github.com/standardbeagle/codescribe/internal/types"
)

var (
	frontendDirs = []string{"components", "pages", "views"}
	backendDirs  = []string{"routes", "controllers", "api", "server"}
	databaseDirs = []string{"models", "migrations", "db"}
)

// Summarize projects files onto the frontend, backend and database layers.
// It is a pure function of its inputs.
func Summarize(files []*types.FileRecord, frameworks []string) types.ArchitectureSummary {
	frontendTag := false
	for _, tag := range frameworks {
		if detect.IsFrontend(tag) {
			frontendTag = true
			break
		}
	}

	s := types.ArchitectureSummary{
		FrontendFilePaths: []string{},
		BackendFilePaths:  []string{},
		DatabaseFilePaths: []string{},
		APISignatures:     []string{},
	}
	for _, f := range files {
		rel := f.RelativePath
		if len(f.UIComponents) > 0 || f.FileType == types.FileTypeMarkup || inDir(rel, frontendDirs) ||
			(frontendTag && filetype.IsFrontendExtension(rel)) {
			s.FrontendFilePaths = append(s.FrontendFilePaths, rel)
		}
		if len(f.Routes) > 0 || inDir(rel, backendDirs) {
			s.BackendFilePaths = append(s.BackendFilePaths, rel)
		}
		if len(f.DatabaseQueries) > 0 || inDir(rel, databaseDirs) || len(detect.Match(detect.DatabaseTable, f.Dependencies)) > 0 {
			s.DatabaseFilePaths = append(s.DatabaseFilePaths, rel)
		}
		for _, r := range f.Routes {
			s.APISignatures = append(s.APISignatures, r.HTTPMethod+" "+r.PathPattern)
		}
	}
	return s
}

// inDir reports whether one of rel's directory segments is in dirs.
func inDir(rel string, dirs []string) bool {
	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		for _, d := range dirs {
			if strings.EqualFold(seg, d) {
				return true
			}
		}
	}
	return false
}
