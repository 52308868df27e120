// Package main checks a regenerated OpenAPI document for breaking changes
// against a committed baseline. Intended for CI: exits non-zero when a path,
// method, or response documented in the baseline disappears.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// apiSurface maps "METHOD path" to the set of documented response codes.
type apiSurface map[string]map[string]struct{}

func main() {
	basePath := flag.String("base", "", "baseline swagger.yaml")
	revisionPath := flag.String("revision", "", "regenerated swagger.yaml to check")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> -revision <path>")
		os.Exit(2)
	}

	base, err := loadSurface(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load baseline: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadSurface(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision: %v\n", err)
		os.Exit(1)
	}

	breaks := diff(base, revision)
	if len(breaks) > 0 {
		fmt.Fprintln(os.Stderr, "breaking API changes detected:")
		for _, b := range breaks {
			fmt.Fprintf(os.Stderr, "- %s\n", b)
		}
		os.Exit(1)
	}
	fmt.Println("API surface is backward compatible")
}

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Responses map[string]yaml.Node `yaml:"responses"`
	} `yaml:"paths"`
}

func loadSurface(path string) (apiSurface, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc swaggerDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("%s: no paths documented", path)
	}

	surface := apiSurface{}
	for route, ops := range doc.Paths {
		for method, op := range ops {
			if !isHTTPMethod(method) {
				continue
			}
			key := strings.ToUpper(method) + " " + route
			codes := map[string]struct{}{}
			for code := range op.Responses {
				codes[code] = struct{}{}
			}
			surface[key] = codes
		}
	}
	return surface, nil
}

func isHTTPMethod(s string) bool {
	switch strings.ToLower(s) {
	case "get", "put", "post", "delete", "patch", "head", "options":
		return true
	}
	return false
}

// diff lists every operation or response code present in base but gone in
// revision. Additions are always compatible.
func diff(base, revision apiSurface) []string {
	var breaks []string
	for op, codes := range base {
		revCodes, ok := revision[op]
		if !ok {
			breaks = append(breaks, fmt.Sprintf("%s was removed", op))
			continue
		}
		for code := range codes {
			if _, ok := revCodes[code]; !ok {
				breaks = append(breaks, fmt.Sprintf("%s no longer documents response %s", op, code))
			}
		}
	}
	sort.Strings(breaks)
	return breaks
}
