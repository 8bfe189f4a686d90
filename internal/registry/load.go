package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/fsutil"
)

// packageBlock is the HCL schema for one package declaration.
type packageBlock struct {
	Prefix    string `hcl:"prefix,label"`
	BasePath  string `hcl:"base_path"`
	Main      string `hcl:"main,optional"`
	DistDir   string `hcl:"dist_dir,optional"`
	SourceDir string `hcl:"source_dir,optional"`
}

// registryFile is the HCL schema for one registry file.
type registryFile struct {
	Packages []*packageBlock `hcl:"package,block"`
}

// LoadPaths populates the registry from the given paths. Each path may be a
// single .hcl file or a directory searched recursively for .hcl files.
func (r *Registry) LoadPaths(ctx context.Context, fsys afero.Fs, paths ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading package declarations.", "paths", paths)

	parser := hclparse.NewParser()

	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to stat registry path %s: %w", p, err)
		}

		filePaths := []string{p}
		if info.IsDir() {
			filePaths, err = fsutil.FindFilesByExtension(fsys, p, ".hcl")
			if err != nil {
				return fmt.Errorf("failed to walk registry path %s: %w", p, err)
			}
			if len(filePaths) == 0 {
				logger.Warn("No .hcl registry files found in path.", "path", p)
			}
		}

		for _, filePath := range filePaths {
			if err := r.loadFile(ctx, fsys, parser, filePath); err != nil {
				return err
			}
		}
	}

	logger.Debug("Registry population finished.", "packages", r.Len())
	return nil
}

func (r *Registry) loadFile(ctx context.Context, fsys afero.Fs, parser *hclparse.Parser, filePath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing registry file.", "path", filePath)

	src, err := afero.ReadFile(fsys, filePath)
	if err != nil {
		return fmt.Errorf("failed to read registry file %s: %w", filePath, err)
	}

	hclFile, diags := parser.ParseHCL(src, filePath)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse registry file %s: %w", filePath, diags)
	}

	var decoded registryFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &decoded); diags.HasErrors() {
		return fmt.Errorf("failed to decode registry file %s: %w", filePath, diags)
	}

	for _, blk := range decoded.Packages {
		pkg := &Package{
			Prefix:    blk.Prefix,
			BasePath:  blk.BasePath,
			Main:      blk.Main,
			DistDir:   blk.DistDir,
			SourceDir: blk.SourceDir,
		}
		if err := r.Add(pkg); err != nil {
			return fmt.Errorf("invalid package declaration in %s: %w", filePath, err)
		}
		logger.Debug("Registered package.", "prefix", pkg.Prefix, "base_path", pkg.BasePath)
	}

	return nil
}
