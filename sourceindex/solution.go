package sourceindex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/impactsel/engine/errs"
)

// solutionFile is the YAML shape of a solution descriptor:
//
//	projects:
//	  - path: src/Calc
//	    framework_tag: net8.0
//	    source_files: [Calculator.cs]
//	    references: [../Shared]
//
// A project that lists no source_files has its path walked for .cs files
// instead, so hand-written descriptors stay short.
type solutionFile struct {
	Projects []struct {
		Path         string   `yaml:"path"`
		FrameworkTag string   `yaml:"framework_tag"`
		SourceFiles  []string `yaml:"source_files"`
		References   []string `yaml:"references"`
	} `yaml:"projects"`
}

// LoadSolution reads a YAML solution descriptor from path. Relative
// source-file entries resolve against the project's path; relative project
// paths resolve against the descriptor's directory.
func LoadSolution(path string) (SolutionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SolutionDescriptor{}, &errs.InvalidInput{What: fmt.Sprintf("reading solution descriptor %s: %v", path, err)}
	}
	return ParseSolution(data, filepath.Dir(path))
}

// ParseSolution decodes descriptor YAML, resolving relative paths against
// baseDir.
func ParseSolution(data []byte, baseDir string) (SolutionDescriptor, error) {
	var file solutionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return SolutionDescriptor{}, &errs.InvalidInput{What: fmt.Sprintf("parsing solution descriptor: %v", err)}
	}
	if len(file.Projects) == 0 {
		return SolutionDescriptor{}, &errs.InvalidInput{What: "solution descriptor has no projects"}
	}

	var solution SolutionDescriptor
	for _, p := range file.Projects {
		if p.Path == "" {
			return SolutionDescriptor{}, &errs.InvalidInput{What: "project entry missing path"}
		}
		projectPath := p.Path
		if !filepath.IsAbs(projectPath) && baseDir != "" {
			projectPath = filepath.Join(baseDir, projectPath)
		}

		proj := ProjectDescriptor{
			Path:         projectPath,
			FrameworkTag: p.FrameworkTag,
		}
		for _, ref := range p.References {
			if !filepath.IsAbs(ref) {
				ref = filepath.Join(projectPath, ref)
			}
			proj.References = append(proj.References, ref)
		}

		if len(p.SourceFiles) > 0 {
			for _, src := range p.SourceFiles {
				if !filepath.IsAbs(src) {
					src = filepath.Join(projectPath, src)
				}
				proj.SourceFiles = append(proj.SourceFiles, src)
			}
		} else {
			files, err := findSourceFiles(projectPath)
			if err != nil {
				return SolutionDescriptor{}, &errs.InvalidInput{What: fmt.Sprintf("walking project %s: %v", projectPath, err)}
			}
			proj.SourceFiles = files
		}
		solution.Projects = append(solution.Projects, proj)
	}
	return solution, nil
}

// findSourceFiles walks root collecting .cs files in deterministic order,
// skipping build output directories.
func findSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "bin", "obj", ".git":
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".cs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
