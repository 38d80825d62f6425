package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importRef struct {
	file string // slash separated, relative to the module root
	imp  string
	test bool
}

// collectImports parses every .go file under internal/ and returns its imports.
func collectImports(t *testing.T) (string, []importRef) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var refs []importRef
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "testdata":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			refs = append(refs, importRef{file: rel, imp: imp, test: strings.HasSuffix(rel, "_test.go")})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath, refs
}

func TestImportBoundaries(t *testing.T) {
	modulePath, refs := collectImports(t)

	var violations []string
	for _, r := range refs {
		if r.test {
			// Tests may wire real stores.
			continue
		}
		for _, bad := range disallowedImports(modulePath, layerFor(r.file)) {
			if strings.HasPrefix(r.imp, bad) {
				violations = append(violations, fmt.Sprintf("- %s imports %q (disallowed: %q)", r.file, r.imp, bad))
				break
			}
		}
	}
	if len(violations) > 0 {
		t.Fatal("import boundary violations:\n" + strings.Join(violations, "\n"))
	}
}

// The analytics engine stays free of I/O: standard library, the validator and shared error
// sentinels only.
func TestEngineImportsStayPure(t *testing.T) {
	modulePath, refs := collectImports(t)
	allowed := map[string]bool{
		"github.com/go-playground/validator/v10": true,
		modulePath + "/internal/pkg/errors":      true,
		"github.com/stretchr/testify/assert":     true,
		"github.com/stretchr/testify/require":    true,
	}

	var violations []string
	for _, r := range refs {
		if !strings.HasPrefix(r.file, "internal/modules/insights/") {
			continue
		}
		first, _, _ := strings.Cut(r.imp, "/")
		if !strings.Contains(first, ".") {
			continue
		}
		if allowed[r.imp] {
			continue
		}
		violations = append(violations, fmt.Sprintf("- %s imports %q", r.file, r.imp))
	}
	if len(violations) > 0 {
		t.Fatal("insights engine imports outside its allow list:\n" + strings.Join(violations, "\n"))
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/platform/"), strings.HasPrefix(rel, "internal/pkg/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/modules/"):
		return "modules"
	case strings.HasPrefix(rel, "internal/domain/"), strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/jobs/"), strings.HasPrefix(rel, "internal/temporalx/"):
		return "jobs"
	case strings.HasPrefix(rel, "internal/http/"):
		return "http"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	internal := modulePath + "/internal/"
	switch layer {
	case "platform":
		return []string{
			internal + "modules/",
			internal + "data/",
			internal + "services",
			internal + "http",
			internal + "jobs/",
			internal + "temporalx",
			internal + "app",
		}
	case "modules":
		return []string{
			internal + "data/",
			internal + "platform/",
			internal + "services",
			internal + "http",
			internal + "jobs/",
			internal + "app",
		}
	case "data":
		return []string{
			internal + "services",
			internal + "http",
			internal + "jobs/",
			internal + "temporalx",
			internal + "app",
		}
	case "services":
		return []string{
			internal + "http",
			internal + "jobs/",
			internal + "temporalx",
			internal + "app",
		}
	case "jobs":
		return []string{
			internal + "http",
			internal + "app",
		}
	case "http":
		return []string{
			internal + "data/",
			internal + "jobs/",
			internal + "temporalx",
			internal + "app",
		}
	default:
		return nil
	}
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp == "" {
				return "", fmt.Errorf("empty module path in %s", goModPath)
			}
			return mp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
