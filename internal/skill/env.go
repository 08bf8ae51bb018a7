package skill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"cairn/internal/artifact"
	"cairn/internal/config"
	"cairn/internal/dispatch"
	"cairn/internal/logger"
	"cairn/internal/manifest"
	"cairn/internal/render"
	"cairn/internal/resources"
	"cairn/internal/workflow"
)

// Env carries the shared services skill resolvers draw on. Build one per
// invocation with [NewEnv]; resolvers treat it as read-only.
type Env struct {
	Config    *config.Config
	Skills    *Registry
	Dispatch  *dispatch.Builder
	Resources *resources.Library
	Artifacts *artifact.Reader

	// Catalog is the project skill catalog, nil when the project has none.
	Catalog *manifest.Catalog
}

// NewEnv assembles an environment from configuration.
//
// The project catalog and pack manifest are optional: a missing file is
// silently skipped and an unreadable one is logged and skipped, so a broken
// sidecar file never blocks guidance.
func NewEnv(ctx context.Context, cfg *config.Config, skills *Registry) (*Env, error) {
	lib, err := resources.NewLibrary(resources.WithDirs(conventionDirs(ctx, cfg)...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build convention library")
	}

	return &Env{
		Config:    cfg,
		Skills:    skills,
		Dispatch:  dispatch.NewBuilder(cfg.Dispatch.Program, roleModels(ctx, cfg.Dispatch.Models)),
		Resources: lib,
		Artifacts: artifact.NewReaderWithPath(cfg.Artifacts.BasePath, cfg.Artifacts.PlanPath),
		Catalog:   loadCatalog(ctx, cfg),
	}, nil
}

// roleModels converts the configured role-to-model map onto typed roles.
// Unknown role keys are logged and ignored rather than failing the run.
func roleModels(ctx context.Context, models map[string]string) map[dispatch.Role]string {
	out := make(map[dispatch.Role]string, len(models))
	for name, model := range models {
		role, err := dispatch.ParseRole(name)
		if err != nil {
			logger.G(ctx).WithField("role", name).Warn("ignoring model assignment for unknown role")
			continue
		}
		out[role] = model
	}
	return out
}

// conventionDirs builds the document search order: configured directories
// (or the repo-local and user-global defaults), then any pack directories.
func conventionDirs(ctx context.Context, cfg *config.Config) []string {
	base := cfg.Artifacts.BasePath

	var dirs []string
	if len(cfg.Resources.Dirs) > 0 {
		dirs = append(dirs, cfg.Resources.Dirs...)
	} else {
		dirs = append(dirs, filepath.Join(base, artifact.Dir, "conventions"))
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, artifact.Dir, "conventions"))
		}
	}

	if pm := loadPacks(ctx, cfg); pm != nil {
		dirs = append(dirs, pm.ConventionDirs(base)...)
	}
	return dirs
}

// loadCatalog reads the project skill catalog when one exists.
func loadCatalog(ctx context.Context, cfg *config.Config) *manifest.Catalog {
	path := sidecarPath(cfg, cfg.Artifacts.CatalogPath)
	if path == "" {
		return nil
	}
	cat, err := manifest.ReadFromFile(path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Warn("skill catalog unreadable, using built-ins only")
		return nil
	}
	return cat
}

// loadPacks reads the pack manifest when one exists.
func loadPacks(ctx context.Context, cfg *config.Config) *manifest.PackManifest {
	path := sidecarPath(cfg, cfg.Artifacts.PacksPath)
	if path == "" {
		return nil
	}
	pm, err := manifest.ReadPacksFromFile(path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("path", path).Warn("pack manifest unreadable, skipping pack directories")
		return nil
	}
	return pm
}

// sidecarPath resolves an optional project file against the artifacts base.
// Returns "" when unconfigured or absent.
func sidecarPath(cfg *config.Config, path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Artifacts.BasePath, path)
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Target is a resolved dispatch destination.
type Target struct {
	// Name is the canonical target name.
	Name string

	// Invoke is what a dispatch command runs: the bare name for built-in
	// and named catalog skills, or an explicit script path.
	Invoke string

	// Steps is the size of the target's step table. Zero for freeform
	// targets.
	Steps int

	// Role is the agent role that runs the target.
	Role dispatch.Role

	// Scripted reports whether the target follows a step table.
	Scripted bool
}

// ResolveTarget finds a dispatch target by name. Project catalog entries are
// consulted first so a project can override a built-in skill; the built-in
// registry is the fallback.
func (e *Env) ResolveTarget(name string) (Target, bool) {
	if e.Catalog != nil {
		if entry, ok := e.Catalog.Find(name); ok {
			role := dispatch.RoleGeneralPurpose
			if r, err := dispatch.ParseRole(entry.Role); err == nil {
				role = r
			}
			return Target{
				Name:     entry.Skill,
				Invoke:   entry.Target(),
				Steps:    entry.Steps,
				Role:     role,
				Scripted: entry.Mode == manifest.ModeScripted,
			}, true
		}
	}
	if e.Skills != nil {
		if s, err := e.Skills.Resolve(name); err == nil {
			return Target{
				Name:     s.Name,
				Invoke:   s.Name,
				Steps:    s.Table.Len(),
				Role:     s.Role,
				Scripted: true,
			}, true
		}
	}
	return Target{}, false
}

// PlanReader returns the artifact reader for an invocation, honoring a
// --plan override.
func (e *Env) PlanReader(inv workflow.Invocation) *artifact.Reader {
	if inv.PlanPath != "" {
		return artifact.NewReaderWithPath(e.Config.Artifacts.BasePath, inv.PlanPath)
	}
	return e.Artifacts
}

// Thoughts bounds a thoughts payload to the configured echo limit.
func (e *Env) Thoughts(s string) string {
	return workflow.TruncateThoughts(s, e.Config.Output.ThoughtsLimit)
}

// EmbedDoc returns a convention document's body as action lines. When the
// document cannot be served it returns an escalation block instead and
// reports ok false, so the caller suppresses follow-up commands rather than
// steering the agent onward without required content.
func (e *Env) EmbedDoc(name string) (lines []string, ok bool) {
	doc, err := e.Resources.Get(name)
	if err != nil {
		return render.Escalate(
			fmt.Sprintf("convention document %q is unavailable", name),
			"No configured conventions directory contains it.",
			"Ask the user to install the document, then retry this exact invocation.",
		), false
	}
	body := strings.TrimRight(doc.Body, "\n")
	if body == "" {
		return nil, true
	}
	return strings.Split(body, "\n"), true
}
