package promo

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/luxereward/internal/celebrate"
	"github.com/louisbranch/luxereward/internal/issuance"
	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
	errori18n "github.com/louisbranch/luxereward/internal/platform/errors/i18n"
	platformi18n "github.com/louisbranch/luxereward/internal/platform/i18n"
	"github.com/louisbranch/luxereward/internal/services/promo/routepath"
	"github.com/louisbranch/luxereward/internal/services/promo/templates"
	"github.com/louisbranch/luxereward/internal/services/shared/htmx"
	"github.com/louisbranch/luxereward/internal/services/shared/httpx"
	"github.com/louisbranch/luxereward/internal/services/shared/i18nhttp"
)

const maxViewportBody = 4 << 10

type handlers struct {
	sessions     *SessionStore
	assetBaseURL string
	expiryDays   int
	navThreshold float64
	pollInterval time.Duration
	regions      []string
}

func (h *handlers) mount(mux *http.ServeMux) {
	mux.HandleFunc(http.MethodGet+" /{$}", h.handlePage)
	mux.HandleFunc(http.MethodGet+" "+routepath.Coupon, h.handleCoupon)
	mux.HandleFunc(http.MethodPost+" "+routepath.CouponIssue, h.handleCouponIssue)
	mux.HandleFunc(http.MethodPost+" "+routepath.CouponRetry, h.handleCouponRetry)
	mux.HandleFunc(http.MethodPost+" "+routepath.Viewport, h.handleViewport)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, handleHealth)
}

func (h *handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	tag := i18nhttp.Resolve(w, r)
	loc := i18nhttp.Printer(tag)
	session, err := h.sessions.Create()
	if err != nil {
		log.Printf("create page session: %v", err)
		h.writeFragmentError(w, r, tag, err)
		return
	}

	view := templates.PageView{
		PageID:       session.ID,
		Lang:         tag.String(),
		Loc:          loc,
		AssetBaseURL: h.assetBaseURL,
		NavThreshold: h.navThreshold,
		Flags:        session.Observer.Flags(),
		Cards:        templates.InfoCards(h.regions),
		Coupon:       h.couponView(session.ID, session.Machine.CurrentState(), tag),
		Languages:    languageLinks(r, tag),
	}
	if err := htmx.Render(w, r, http.StatusOK, templates.Page(view)); err != nil {
		log.Printf("render page: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *handlers) handleCoupon(w http.ResponseWriter, r *http.Request) {
	h.couponAction(w, r, nil)
}

func (h *handlers) handleCouponIssue(w http.ResponseWriter, r *http.Request) {
	h.couponAction(w, r, (*issuance.Machine).Trigger)
}

func (h *handlers) handleCouponRetry(w http.ResponseWriter, r *http.Request) {
	h.couponAction(w, r, (*issuance.Machine).Retry)
}

// couponAction applies act, which may be nil, and responds with the coupon
// fragment for the resulting state.
func (h *handlers) couponAction(w http.ResponseWriter, r *http.Request, act func(*issuance.Machine) bool) {
	tag, _ := i18nhttp.ResolveTag(r)
	session, err := h.sessions.Lookup(r.FormValue(routepath.PageParam))
	if err != nil {
		h.writeFragmentError(w, r, tag, err)
		return
	}
	if act != nil {
		act(session.Machine)
	}

	snap := session.SettledSnapshot(r.Context())
	if effect, ok := session.CelebrationFor(snap); ok {
		header, err := celebrate.TriggerHeader(effect)
		if err != nil {
			log.Printf("encode celebration page=%s: %v", session.ID, err)
		} else {
			htmx.SetTrigger(w, header)
		}
	}
	if err := htmx.Render(w, r, http.StatusOK, templates.CouponPanel(h.couponView(session.ID, snap, tag))); err != nil {
		log.Printf("render coupon page=%s: %v", session.ID, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *handlers) couponView(pageID string, snap issuance.Snapshot, tag language.Tag) templates.CouponView {
	view := templates.CouponView{
		PageID:       pageID,
		Status:       snap.Status,
		Code:         snap.Code,
		ExpiryDays:   h.expiryDays,
		PollInterval: h.pollInterval,
		Loc:          i18nhttp.Printer(tag),
	}
	if snap.Status == issuance.StatusFailed {
		view.Reason = snap.Reason
		if view.Reason == "" {
			view.Reason = errori18n.Localize(platformi18n.LocaleForTag(tag), snap.Err)
		}
	}
	return view
}

func (h *handlers) writeFragmentError(w http.ResponseWriter, r *http.Request, tag language.Tag, err error) {
	message := errori18n.Localize(platformi18n.LocaleForTag(tag), err)
	if renderErr := htmx.Render(w, r, apperrors.HTTPStatus(err), templates.ErrorPanel(message)); renderErr != nil {
		http.Error(w, message, apperrors.HTTPStatus(err))
	}
}

// viewportRequest is the bridge script's report of scroll and
// intersection changes since its last report.
type viewportRequest struct {
	Page    string          `json:"page"`
	Offset  *float64        `json:"offset,omitempty"`
	Regions map[string]bool `json:"regions,omitempty"`
}

func (h *handlers) handleViewport(w http.ResponseWriter, r *http.Request) {
	tag, _ := i18nhttp.ResolveTag(r)
	var req viewportRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxViewportBody))
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		h.writeJSONError(w, tag, apperrors.Wrap(apperrors.CodeViewportMalformed, "decode viewport payload", err))
		return
	}
	session, err := h.sessions.Lookup(req.Page)
	if err != nil {
		h.writeJSONError(w, tag, err)
		return
	}

	if req.Offset != nil {
		session.Observer.Scroll(*req.Offset)
	}
	regions := make([]string, 0, len(req.Regions))
	for region := range req.Regions {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	for _, region := range regions {
		if err := session.Observer.Intersect(strings.TrimSpace(region), req.Regions[region]); err != nil {
			h.writeJSONError(w, tag, err)
			return
		}
	}

	if err := httpx.WriteJSON(w, http.StatusOK, session.Observer.Flags()); err != nil {
		log.Printf("write viewport flags page=%s: %v", session.ID, err)
	}
}

func (h *handlers) writeJSONError(w http.ResponseWriter, tag language.Tag, err error) {
	message := errori18n.Localize(platformi18n.LocaleForTag(tag), err)
	if writeErr := httpx.WriteJSONError(w, apperrors.HTTPStatus(err), string(apperrors.GetCode(err)), message); writeErr != nil {
		log.Printf("write viewport error: %v", writeErr)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func languageLinks(r *http.Request, active language.Tag) []templates.LanguageLink {
	loc := i18nhttp.Printer(active)
	options := i18nhttp.BuildLanguageOptions(i18nhttp.Supported(), active.String(), func(tag language.Tag) string {
		return loc.Sprintf(i18nhttp.LanguageKeyLabel(tag))
	})
	links := make([]templates.LanguageLink, 0, len(options))
	for _, option := range options {
		links = append(links, templates.LanguageLink{
			Label:  option.Label,
			URL:    i18nhttp.LanguageURL(r.URL.Path, r.URL.RawQuery, option.Tag),
			Active: option.Active,
		})
	}
	return links
}
