// Package profile reshapes raw upstream texture data into the public
// response schema, enriching it with catalog metadata and popularity counts.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"skincraft-api/internal/capes"
	"skincraft-api/internal/laby"
)

const poseURLFormat = "https://starlightskins.lunareclipse.studio/render/walking/%s/full"

const unknownCapeName = "Unknown Cape"

// topTagCount caps how many community tags are joined into the tags field.
const topTagCount = 3

// upstream is the slice of the Laby client the service depends on.
type upstream interface {
	Profile(ctx context.Context, identifier string) (*laby.Profile, error)
	TextureUserCount(ctx context.Context, hash, kind string) (int, error)
	SkinTags(ctx context.Context, hash string) ([]laby.Tag, error)
}

// Cape is a formatted cape texture. Optional fields are omitted from the
// JSON payload entirely when the source value is absent.
type Cape struct {
	Name        string `json:"name"`
	Hash        string `json:"hash"`
	Description string `json:"description,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Active      bool   `json:"active,omitempty"`
}

// Skin is a formatted skin texture.
type Skin struct {
	Hash   string `json:"hash"`
	Count  *int   `json:"count,omitempty"`
	Tags   string `json:"tags,omitempty"`
	Active bool   `json:"active,omitempty"`
}

type Textures struct {
	Capes []Cape `json:"CAPES,omitempty"`
	Skins []Skin `json:"SKINS,omitempty"`
}

type Response struct {
	UUID        string             `json:"uuid"`
	Name        string             `json:"name"`
	Pose        string             `json:"pose"`
	NameHistory []laby.RenameEvent `json:"name_history"`
	Textures    Textures           `json:"textures"`
}

type Service struct {
	laby    upstream
	catalog *capes.Catalog
	log     *slog.Logger
}

func NewService(upstream upstream, catalog *capes.Catalog, log *slog.Logger) *Service {
	return &Service{laby: upstream, catalog: catalog, log: log}
}

// Profile builds the full player profile: identity, rename history and both
// texture groups. Empty texture groups are left out of the payload.
func (s *Service) Profile(ctx context.Context, identifier string) (*Response, error) {
	raw, err := s.laby.Profile(ctx, identifier)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		UUID:        raw.UUID,
		Name:        raw.Name,
		Pose:        fmt.Sprintf(poseURLFormat, raw.UUID),
		NameHistory: raw.NameHistory,
	}
	if resp.NameHistory == nil {
		resp.NameHistory = []laby.RenameEvent{}
	}

	resp.Textures.Capes = s.formatCapes(raw.Textures.Cape)
	resp.Textures.Skins = formatSkins(raw.Textures.Skin)

	return resp, nil
}

// Capes returns the player's capes enriched with per-cape user counts.
func (s *Service) Capes(ctx context.Context, identifier string) ([]Cape, error) {
	raw, err := s.laby.Profile(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(raw.Textures.Cape) == 0 {
		return []Cape{}, nil
	}

	formatted := s.formatCapes(raw.Textures.Cape)

	// fetch popularity counts concurrently; results slot back by index,
	// individual failures just leave count unset
	g, gctx := errgroup.WithContext(ctx)
	for i := range formatted {
		i := i
		g.Go(func() error {
			count, err := s.laby.TextureUserCount(gctx, formatted[i].Hash, "cape")
			if err != nil {
				s.log.Warn("cape_count_fetch_failed", "hash", formatted[i].Hash, "error", err)
				return nil
			}
			formatted[i].Count = &count
			return nil
		})
	}
	_ = g.Wait()

	return formatted, nil
}

// Skins returns the player's skins enriched with user counts and top tags.
func (s *Service) Skins(ctx context.Context, identifier string) ([]Skin, error) {
	raw, err := s.laby.Profile(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(raw.Textures.Skin) == 0 {
		return []Skin{}, nil
	}

	formatted := formatSkins(raw.Textures.Skin)

	g, gctx := errgroup.WithContext(ctx)
	for i := range formatted {
		i := i
		g.Go(func() error {
			count, err := s.laby.TextureUserCount(gctx, formatted[i].Hash, "skin")
			if err != nil {
				s.log.Warn("skin_count_fetch_failed", "hash", formatted[i].Hash, "error", err)
				return nil
			}
			formatted[i].Count = &count
			return nil
		})
		g.Go(func() error {
			tags, err := s.laby.SkinTags(gctx, formatted[i].Hash)
			if err != nil {
				s.log.Warn("skin_tags_fetch_failed", "hash", formatted[i].Hash, "error", err)
				return nil
			}
			formatted[i].Tags = joinTopTags(tags)
			return nil
		})
	}
	_ = g.Wait()

	return formatted, nil
}

// IsNotFound reports whether err means the player does not exist upstream.
func IsNotFound(err error) bool {
	return errors.Is(err, laby.ErrNotFound)
}

func (s *Service) formatCapes(entries []laby.TextureEntry) []Cape {
	if len(entries) == 0 {
		return nil
	}

	formatted := make([]Cape, 0, len(entries))
	for _, entry := range entries {
		cape := Cape{
			Name:   unknownCapeName,
			Hash:   entry.ImageHash,
			Active: entry.Active,
		}
		if rec, ok := s.catalog.ByHash(entry.ImageHash); ok {
			cape.Name = rec.Name
			cape.Description = rec.Description
		}
		formatted = append(formatted, cape)
	}

	sort.SliceStable(formatted, func(i, j int) bool {
		return formatted[i].Active && !formatted[j].Active
	})
	return formatted
}

func formatSkins(entries []laby.TextureEntry) []Skin {
	if len(entries) == 0 {
		return nil
	}

	formatted := make([]Skin, 0, len(entries))
	for _, entry := range entries {
		formatted = append(formatted, Skin{
			Hash:   entry.ImageHash,
			Active: entry.Active,
		})
	}

	sort.SliceStable(formatted, func(i, j int) bool {
		return formatted[i].Active && !formatted[j].Active
	})
	return formatted
}

// joinTopTags keeps the highest-voted tags, comma-joined.
func joinTopTags(tags []laby.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	sorted := make([]laby.Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VoteScore > sorted[j].VoteScore
	})
	if len(sorted) > topTagCount {
		sorted = sorted[:topTagCount]
	}

	names := make([]string, len(sorted))
	for i, tag := range sorted {
		names[i] = tag.Tag
	}
	return strings.Join(names, ", ")
}
