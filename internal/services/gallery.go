package services

import (
	"strings"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/sqlutil"
	types "github.com/yungbote/catalog-backend/internal/domain"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const (
	DefaultGalleryPageSize = 48
	maxGalleryPageSize     = 200
	maxNoteLength          = 4000
)

type GalleryQuery struct {
	Search   string
	Page     int
	PageSize int
}

type GalleryPage struct {
	Images     []*types.GalleryImage `json:"images"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
}

type GalleryImageDetail struct {
	Image    *types.GalleryImage `json:"image"`
	Position int                 `json:"position"`
	Total    int                 `json:"total"`
	PrevKey  *string             `json:"prev_key"`
	NextKey  *string             `json:"next_key"`
}

// GalleryService browses the legacy bucket's images and their notes. The
// bucket is read-only here; there is no delete.
type GalleryService interface {
	ListGallery(dbc dbctx.Context, q GalleryQuery) (*GalleryPage, error)
	GetGalleryImage(dbc dbctx.Context, key string) (*GalleryImageDetail, error)
	SaveNote(dbc dbctx.Context, imageKey, content string) (*types.Note, error)
}

type galleryService struct {
	log      *logger.Logger
	listing  *LegacyListing
	noteRepo repos.NoteRepo
}

func NewGalleryService(log *logger.Logger, listing *LegacyListing, noteRepo repos.NoteRepo) GalleryService {
	return &galleryService{
		log:      log.With("service", "GalleryService"),
		listing:  listing,
		noteRepo: noteRepo,
	}
}

func (s *galleryService) imageKeys(dbc dbctx.Context) ([]string, error) {
	files, err := s.listing.Files(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if types.IsGalleryImageKey(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *galleryService) ListGallery(dbc dbctx.Context, q GalleryQuery) (*GalleryPage, error) {
	p := sqlutil.Page{Number: q.Page, Size: q.PageSize}.Normalize(DefaultGalleryPageSize, maxGalleryPageSize)
	keys, err := s.imageKeys(dbc)
	if err != nil {
		s.log.Error("Gallery listing failed", "error", err)
		return nil, apierr.Internal("gallery_list_failed", err)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	if search != "" {
		noted, err := s.noteRepo.KeysMatching(dbc, search)
		if err != nil {
			return nil, apierr.Internal("gallery_list_failed", err)
		}
		byNote := make(map[string]struct{}, len(noted))
		for _, k := range noted {
			byNote[k] = struct{}{}
		}
		filtered := make([]string, 0, len(keys))
		for _, k := range keys {
			_, hit := byNote[k]
			if hit || strings.Contains(strings.ToLower(k), search) {
				filtered = append(filtered, k)
			}
		}
		keys = filtered
	}

	out := &GalleryPage{
		Images:     []*types.GalleryImage{},
		Total:      len(keys),
		Page:       p.Number,
		TotalPages: sqlutil.TotalPages(int64(len(keys)), p.Size),
	}
	start := p.Offset()
	if start >= len(keys) {
		return out, nil
	}
	end := start + p.Size
	if end > len(keys) {
		end = len(keys)
	}
	window := keys[start:end]
	notes, err := s.noteRepo.GetByKeys(dbc, window)
	if err != nil {
		return nil, apierr.Internal("gallery_list_failed", err)
	}
	for _, k := range window {
		out.Images = append(out.Images, s.image(k, notes[k]))
	}
	return out, nil
}

func (s *galleryService) image(key string, note *types.Note) *types.GalleryImage {
	img := &types.GalleryImage{Key: key, URL: s.listing.PublicURL(key)}
	if note != nil && note.Content != "" {
		img.HasNote = true
		img.Note = note.Content
	}
	return img
}

func (s *galleryService) GetGalleryImage(dbc dbctx.Context, key string) (*GalleryImageDetail, error) {
	keys, err := s.imageKeys(dbc)
	if err != nil {
		return nil, apierr.Internal("gallery_list_failed", err)
	}
	idx := -1
	for i, k := range keys {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierr.NotFound("image_not_found", "image not found")
	}
	note, err := s.noteRepo.Get(dbc, key)
	if err != nil {
		return nil, apierr.Internal("note_lookup_failed", err)
	}
	out := &GalleryImageDetail{
		Image:    s.image(key, note),
		Position: idx + 1,
		Total:    len(keys),
	}
	if idx > 0 {
		prev := keys[idx-1]
		out.PrevKey = &prev
	}
	if idx < len(keys)-1 {
		next := keys[idx+1]
		out.NextKey = &next
	}
	return out, nil
}

func (s *galleryService) SaveNote(dbc dbctx.Context, imageKey, content string) (*types.Note, error) {
	imageKey = strings.TrimSpace(imageKey)
	if imageKey == "" || strings.Contains(imageKey, "/") || !types.IsGalleryImageKey(imageKey) {
		return nil, apierr.BadRequest("invalid_image_key", "image key must be a root-level image file name")
	}
	content = strings.TrimSpace(content)
	if len(content) > maxNoteLength {
		return nil, apierr.BadRequest("invalid_note", "note is too long")
	}
	n, err := s.noteRepo.Upsert(dbc, imageKey, content)
	if err != nil {
		s.log.Error("Note save failed", "image_key", imageKey, "error", err)
		return nil, apierr.Internal("note_save_failed", err)
	}
	return n, nil
}
