package snapshot

import (
	"path"
	"sort"
	"strings"
)

// Extensions tried when a specifier omits one
var sourceExts = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".vue", ".svelte",
	".py", ".go", ".rs", ".rb", ".java", ".kt", ".php", ".cs", ".swift",
}

// Index files a directory import may resolve to
var indexFiles = []string{"__init__.py", "mod.rs", "lib.rs"}

// Source-root aliases used by bundlers ("@/components/x", "~/lib/y")
var aliasRoots = []string{"src/", "app/", "lib/", ""}

// Resolver maps import specifiers to files of a snapshot
type Resolver struct {
	files map[string]bool
	dirs  map[string][]string // directory -> sorted files directly inside it
}

// NewResolver creates a resolver over the given file set
func NewResolver(files []string) *Resolver {
	r := &Resolver{files: make(map[string]bool, len(files)), dirs: make(map[string][]string)}
	for _, f := range files {
		r.files[f] = true
		dir := path.Dir(f)
		r.dirs[dir] = append(r.dirs[dir], f)
	}
	for d := range r.dirs {
		sort.Strings(r.dirs[d])
	}
	return r
}

// Resolve returns the files an import of spec from importer refers to. Go
// package imports resolve to every file of the package directory.
func (r *Resolver) Resolve(importer, spec string) []string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	for _, base := range r.bases(importer, spec) {
		if f, ok := r.lookup(base); ok {
			return []string{f}
		}
	}
	if files := r.packageDir(spec); len(files) > 0 {
		return files
	}
	return nil
}

// bases lists the path stems a specifier may denote, most specific first
func (r *Resolver) bases(importer, spec string) []string {
	dir := path.Dir(importer)
	switch {
	case strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == "..":
		return []string{CleanPath(path.Join(dir, spec))}
	case strings.HasPrefix(spec, "/"):
		return []string{CleanPath(spec)}
	case strings.HasPrefix(spec, "@/") || strings.HasPrefix(spec, "~/"):
		rest := spec[2:]
		var out []string
		for _, root := range aliasRoots {
			out = append(out, CleanPath(root+rest))
		}
		return out
	case strings.HasPrefix(spec, "."):
		// Python relative import: one dot is the current package
		dots := len(spec) - len(strings.TrimLeft(spec, "."))
		base := dir
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		rest := strings.ReplaceAll(strings.TrimLeft(spec, "."), ".", "/")
		return []string{CleanPath(path.Join(base, rest))}
	}

	out := []string{CleanPath(spec)}
	if !strings.Contains(spec, "/") && strings.Contains(spec, ".") {
		dotted := strings.ReplaceAll(spec, ".", "/")
		out = append(out, CleanPath(dotted), CleanPath(path.Join(dir, dotted)))
	}
	if strings.HasPrefix(spec, "crate::") || strings.Contains(spec, "::") {
		rust := strings.ReplaceAll(strings.TrimPrefix(spec, "crate::"), "::", "/")
		out = append(out, CleanPath("src/"+rust), CleanPath(rust))
	}
	return out
}

// lookup tries base itself, base with each extension, then directory index files
func (r *Resolver) lookup(base string) (string, bool) {
	if base == "" {
		return "", false
	}
	if r.files[base] {
		return base, true
	}

	// "./auth.js" written against auth.ts
	ext := path.Ext(base)
	stem := base
	switch ext {
	case ".js", ".mjs", ".cjs", ".jsx":
		stem = strings.TrimSuffix(base, ext)
	}

	for _, e := range sourceExts {
		if r.files[stem+e] {
			return stem + e, true
		}
	}
	for _, e := range sourceExts {
		if r.files[stem+"/index"+e] {
			return stem + "/index" + e, true
		}
	}
	for _, name := range indexFiles {
		if r.files[stem+"/"+name] {
			return stem + "/" + name, true
		}
	}
	return "", false
}

// packageDir matches Go-style module paths by directory suffix, preferring
// the longest matching directory.
func (r *Resolver) packageDir(spec string) []string {
	if !strings.Contains(spec, "/") {
		return nil
	}
	spec = strings.TrimSuffix(spec, "/")
	best := ""
	for d := range r.dirs {
		if d == "." {
			continue
		}
		if spec == d || strings.HasSuffix(spec, "/"+d) {
			if len(d) > len(best) || (len(d) == len(best) && d < best) {
				best = d
			}
		}
	}
	if best == "" {
		return nil
	}
	var out []string
	for _, f := range r.dirs[best] {
		if !IsTestPath(f) {
			out = append(out, f)
		}
	}
	return out
}

var sourceExtSet = func() map[string]bool {
	m := make(map[string]bool, len(sourceExts))
	for _, e := range sourceExts {
		m[e] = true
	}
	for _, e := range []string{".c", ".h", ".cc", ".cpp", ".hpp", ".scala", ".ex", ".exs", ".sh", ".lua", ".dart"} {
		m[e] = true
	}
	return m
}()

// IsSourcePath reports whether p has a source code extension
func IsSourcePath(p string) bool {
	return sourceExtSet[strings.ToLower(path.Ext(p))]
}
