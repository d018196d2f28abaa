package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asram/pickup-service/internal/model"
)

type ExcelGenerator interface {
	Generate(history model.ClientHistory) ([]byte, error)
}

type PDFGenerator interface {
	Generate(history model.ClientHistory) ([]byte, error)
}

type HistoryService struct {
	pickups  PickupStore
	clients  ClientStore
	cache    HistoryCache // May be nil
	cacheTTL time.Duration
	excel    ExcelGenerator
	pdf      PDFGenerator
	log      zerolog.Logger
}

func NewHistoryService(pickups PickupStore, clients ClientStore, cache HistoryCache, cacheTTL time.Duration, excel ExcelGenerator, pdf PDFGenerator, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		pickups:  pickups,
		clients:  clients,
		cache:    cache,
		cacheTTL: cacheTTL,
		excel:    excel,
		pdf:      pdf,
		log:      log,
	}
}

// ClientHistory resolves the client's pickup subset from the current
// mirror and computes the litre aggregates. Served from the cache when
// a fresh entry exists.
func (s *HistoryService) ClientHistory(ctx context.Context, clientID uuid.UUID) (*model.ClientHistory, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, historyCacheKey(clientID)); err == nil {
			var cached model.ClientHistory
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	snapshot, loadErr := s.pickups.Snapshot()
	if loadErr != nil && len(snapshot) == 0 {
		return nil, fmt.Errorf("pickups unavailable: %w", loadErr)
	}

	history := BuildClientHistory(*client, snapshot)
	if history.WeakMatches > 0 {
		s.log.Warn().
			Str("client_id", clientID.String()).
			Int("weak_matches", history.WeakMatches).
			Msg("pickups matched by contact heuristic only, review advised")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(history); err == nil {
			if err := s.cache.Set(ctx, historyCacheKey(clientID), raw, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("history cache write failed")
			}
		}
	}
	return &history, nil
}

// BuildClientHistory matches pickups against the client (OR across the
// four heuristics) and derives the aggregates. An empty match set is an
// empty result, not an error: total zero, average left at zero.
func BuildClientHistory(client model.Client, pickups []model.Pickup) model.ClientHistory {
	matched := make([]model.Pickup, 0)
	weak := 0
	for _, p := range pickups {
		strength := p.MatchClient(client)
		if strength == model.MatchNone {
			continue
		}
		if strength.IsWeak() {
			weak++
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].EffectiveDate().Before(matched[j].EffectiveDate())
	})

	total := 0.0
	for _, p := range matched {
		total += p.Litres
	}

	history := model.ClientHistory{
		Client:      client,
		Pickups:     matched,
		TotalLitres: total,
		WeakMatches: weak,
	}
	if len(matched) == 0 {
		return history
	}

	first := matched[0].EffectiveDate()
	last := matched[len(matched)-1].EffectiveDate()
	elapsedDays := int(math.Ceil(last.Sub(first).Hours() / 24))
	if elapsedDays < 1 {
		// A single record (or same-day records) spans zero days; the
		// floor keeps the division defined and yields litres*30.
		elapsedDays = 1
	}

	history.FirstPickupAt = first
	history.LastPickupAt = last
	history.AverageLitres30d = math.Round(total/float64(elapsedDays)*30*100) / 100
	return history
}

type ExportFormat string

const (
	ExportFormatExcel ExportFormat = "excel"
	ExportFormatPDF   ExportFormat = "pdf"
)

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportHistory renders the client's history through the configured
// generator and returns a downloadable document.
func (s *HistoryService) ExportHistory(ctx context.Context, clientID uuid.UUID, format ExportFormat) (*ExportResult, error) {
	history, err := s.ClientHistory(ctx, clientID)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatExcel:
		content, err := s.excel.Generate(*history)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    buildExportFileName(*history, "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Generate(*history)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    buildExportFileName(*history, "pdf"),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, fmt.Errorf("%w: invalid export format", ErrInvalidInput)
	}
}

func buildExportFileName(history model.ClientHistory, ext string) string {
	name := sanitizeFileName(history.Client.Name)
	if name == "" {
		name = history.Client.ID.String()
	}
	return fmt.Sprintf("pickup-history-%s-%s.%s", name, time.Now().UTC().Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
