package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/enquesta/internal/ballot"
	"github.com/vncsmyrnk/enquesta/internal/core/domain"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
	"github.com/vncsmyrnk/enquesta/internal/theme"
)

const adminKeyHeader = "X-Admin-Key"

// SiteInfo is what handlers need to build links and printed sheets.
type SiteInfo struct {
	PublicOrigin string
	BrandName    string
}

type PollHandler struct {
	service ports.PollService
	site    SiteInfo
	now     func() time.Time
}

func NewPollHandler(service ports.PollService, site SiteInfo) *PollHandler {
	return &PollHandler{
		service: service,
		site:    site,
		now:     time.Now,
	}
}

type createPollRequest struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Options       []string          `json:"options"`
	AccessMode    domain.AccessMode `json:"access_mode"`
	DurationHours int               `json:"duration_hours"`
	VoterCount    int               `json:"voter_count"`
}

// CreatePoll godoc
// @Summary      Creates a poll
// @Description  Code-gated polls get one vote code per expected voter. The admin key in the response is the only way to fetch the codes again.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Router       /api/polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.service.Create(r.Context(), ports.CreatePollInput{
		Title:         req.Title,
		Description:   req.Description,
		Options:       req.Options,
		AccessMode:    req.AccessMode,
		DurationHours: req.DurationHours,
		VoterCount:    req.VoterCount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createPollResponse{
		pollView:  toPollView(out.Poll, h.now()),
		VoteCodes: out.Poll.VoteCodes,
		AdminKey:  out.AdminKey,
	})
}

// ListPolls godoc
// @Summary      Lists polls, most voted first
// @Tags         polls
// @Produce      json
// @Param        page  query  int     false  "1-based page"
// @Param        q     query  string  false  "title filter"
// @Success      200
// @Router       /api/polls [get]
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	polls, err := h.service.ListPolls(r.Context(), ports.ListPollsInput{
		Page:  page,
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.now()
	views := make([]pollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, toPollView(p, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPollView(poll, h.now()))
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tally, err := h.service.Results(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var total int64
	for _, entry := range tally {
		total += entry.VoteCount
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		PollID:     uuid.MustParse(id),
		TotalVotes: total,
		Results:    tally,
	})
}

// DownloadCodesText godoc
// @Summary      Downloads a code-gated poll's vote codes, one per line
// @Tags         polls
// @Produce      plain
// @Param        X-Admin-Key  header  string  true  "admin key returned on creation"
// @Success      200
// @Failure      403
// @Router       /api/polls/{id}/codes.txt [get]
func (h *PollHandler) DownloadCodesText(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ballot.RenderText(&buf, sheet); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ballot.TextFilename(sheet.PollID)))
	w.Write(buf.Bytes())
}

func (h *PollHandler) DownloadCodesPDF(w http.ResponseWriter, r *http.Request) {
	sheet, ok := h.sheet(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ballot.RenderPDF(&buf, sheet); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ballot.PDFFilename(sheet.PollID)))
	w.Write(buf.Bytes())
}

func (h *PollHandler) sheet(w http.ResponseWriter, r *http.Request) (ballot.Sheet, bool) {
	poll, codes, err := h.service.VoteCodes(r.Context(), chi.URLParam(r, "id"), r.Header.Get(adminKeyHeader))
	if err != nil {
		writeError(w, r, err)
		return ballot.Sheet{}, false
	}

	return ballot.Sheet{
		PollID: poll.ID.String(),
		Title:  poll.Title,
		Codes:  codes,
		Origin: h.site.PublicOrigin,
		Brand:  h.site.BrandName,
	}, true
}

// FindByCode godoc
// @Summary      Resolves a vote code to its poll
// @Description  Used codes still resolve; voting with them is refused.
// @Tags         polls
// @Produce      json
// @Param        code  path  string  true  "vote code"
// @Success      200
// @Failure      404
// @Router       /api/codes/{code} [get]
func (h *PollHandler) FindByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	poll, err := h.service.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, codeLookupResponse{
		PollID:  poll.ID,
		VoteURL: ballot.VoteURL(h.site.PublicOrigin, poll.ID.String(), code),
		Used:    slices.Contains(poll.UsedCodes, code),
	})
}

type embedCodeResponse struct {
	Snippet string      `json:"snippet"`
	Theme   theme.Theme `json:"theme"`
}

func (h *PollHandler) GetEmbedCode(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	t := theme.FromColor(r.URL.Query().Get("color"))
	writeJSON(w, http.StatusOK, embedCodeResponse{
		Snippet: theme.EmbedSnippet(h.site.PublicOrigin, poll.ID.String(), t),
		Theme:   t,
	})
}
