package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/desertthunder/songcart/internal/tasks"
	"github.com/desertthunder/songcart/internal/web"
)

// Engine is the catalog and cart API the handlers drive. [tasks.SongEngine] implements it.
type Engine interface {
	Keyer() *partition.Keyer
	Submit(ctx context.Context, sub models.Submission, author *models.Author) (*models.Song, error)
	List(ctx context.Context, genre string, limit int) ([]*models.Song, error)
	Search(ctx context.Context, genre, artist string, limit int) ([]*models.Song, error)
	Genres(ctx context.Context) ([]string, error)
	AddToCart(ctx context.Context, userID string, uids []string) (*tasks.CartResult, error)
	RemoveFromCart(ctx context.Context, userID string, uids []string) (int, error)
	Checkout(ctx context.Context, userID string, progress chan<- tasks.ProgressUpdate) (*tasks.CheckoutResult, error)
	Cart(ctx context.Context, userID string, limit int) ([]*models.Song, error)
	PreviewCheckout(ctx context.Context, userID string, limit int) ([]*models.Song, error)
	History(ctx context.Context, userID string, limit int) ([]*models.Song, error)
	Ping(ctx context.Context) error
}

var _ Engine = (*tasks.SongEngine)(nil)

// Limits are the fixed fetch sizes of the listing pages.
type Limits struct {
	PageSize    int // GET /
	DisplaySize int // GET /display and /search
	ViewLimit   int // cart, checkout preview and history pages
}

// DefaultLimits returns the fetch sizes used when none are configured.
func DefaultLimits() Limits {
	return Limits{PageSize: 10, DisplaySize: 50, ViewLimit: 100}
}

// SongHandler serves the catalog, cart and history pages and their form posts.
type SongHandler struct {
	engine   Engine
	renderer *web.Renderer
	metrics  *Metrics
	limits   Limits
	logger   *log.Logger
}

// NewSongHandler creates a SongHandler. Zero limits fall back to [DefaultLimits].
func NewSongHandler(engine Engine, renderer *web.Renderer, metrics *Metrics, limits Limits, logger *log.Logger) *SongHandler {
	defaults := DefaultLimits()
	if limits.PageSize <= 0 {
		limits.PageSize = defaults.PageSize
	}
	if limits.DisplaySize <= 0 {
		limits.DisplaySize = defaults.DisplaySize
	}
	if limits.ViewLimit <= 0 {
		limits.ViewLimit = defaults.ViewLimit
	}

	return &SongHandler{
		engine:   engine,
		renderer: renderer,
		metrics:  metrics,
		limits:   limits,
		logger:   logger,
	}
}

// Register adds every songcart route to router.
func (h *SongHandler) Register(router *BasicRouter) {
	router.HandleFunc(http.MethodGet, "/", h.Catalog)
	router.HandleFunc(http.MethodPost, "/sign", h.Sign)
	router.HandleFunc(http.MethodGet, "/display", h.Display)
	router.HandleFunc(http.MethodGet, "/search", h.Search)
	router.HandleFunc(http.MethodPost, "/addSong2Cart", h.AddToCart)
	router.HandleFunc(http.MethodPost, "/removeSongFromCart", h.RemoveFromCart)
	router.HandleFunc(http.MethodPost, "/checkout", h.Checkout)
	router.HandleFunc(http.MethodGet, "/view_cart", h.ViewCart)
	router.HandleFunc(http.MethodGet, "/preview_checkout", h.PreviewCheckout)
	router.HandleFunc(http.MethodGet, "/view_history", h.ViewHistory)
}

// request holds the parameters every page shares.
type request struct {
	userID   string
	genre    string // normalized catalog partition name
	identity Identity
	signedIn bool
}

// parse reads userId and genre. A signed-in identity takes precedence over the userId parameter.
// The legacy genra_name parameter is accepted when genre is absent. Malformed pairs are dropped and the
// rest of the form is used.
func (h *SongHandler) parse(r *http.Request) request {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug("ignoring malformed form values", "path", r.URL.Path, "error", err)
	}

	genre := r.Form.Get("genre")
	if genre == "" {
		genre = r.Form.Get("genra_name")
	}

	req := request{
		userID: r.Form.Get("userId"),
		genre:  h.engine.Keyer().For(genre).Name,
	}

	if id, ok := IdentityFrom(r.Context()); ok {
		req.identity, req.signedIn = id, true
		req.userID = id.UserID
	}

	return req
}

func (req request) page(title string) web.Page {
	page := web.Page{Title: title, UserID: req.userID, Genre: req.genre}
	if req.signedIn {
		page.Identity = req.identity.Email
		if page.Identity == "" {
			page.Identity = req.identity.UserID
		}
	}
	return page
}

// Catalog lists the newest songs of a genre.
func (h *SongHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	h.catalog(w, r, h.limits.PageSize)
}

// Display lists a genre with the larger display limit.
func (h *SongHandler) Display(w http.ResponseWriter, r *http.Request) {
	h.catalog(w, r, h.limits.DisplaySize)
}

func (h *SongHandler) catalog(w http.ResponseWriter, r *http.Request, limit int) {
	req := h.parse(r)

	songs, err := h.engine.List(r.Context(), req.genre, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderCatalog(w, r, req, "", songs)
}

// Search filters a genre's songs by artist name.
func (h *SongHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := h.parse(r)

	artist := r.Form.Get("artistName")
	songs, err := h.engine.Search(r.Context(), req.genre, artist, h.limits.DisplaySize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderCatalog(w, r, req, artist, songs)
}

func (h *SongHandler) renderCatalog(w http.ResponseWriter, r *http.Request, req request, artist string, songs []*models.Song) {
	genres, err := h.engine.Genres(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := req.page(req.genre)
	page.Artist = artist
	page.Genres = genres
	page.Songs = songs
	page.Action = true
	h.render(w, web.PageCatalog, page)
}

// Sign submits a song to the catalog. The author is the signed-in identity, if any.
func (h *SongHandler) Sign(w http.ResponseWriter, r *http.Request) {
	req := h.parse(r)

	var author *models.Author
	if req.signedIn {
		author = &models.Author{Identity: req.identity.UserID, Email: req.identity.Email}
	}

	sub := models.Submission{
		Genre:      req.genre,
		ArtistName: r.Form.Get("artistName"),
		Title:      r.Form.Get("title"),
		AlbumName:  r.Form.Get("albumName"),
		Price:      r.Form.Get("price"),
	}

	if _, err := h.engine.Submit(r.Context(), sub, author); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.songSubmitted(req.genre)
	h.redirect(w, r, req)
}

// AddToCart copies the checked catalog songs into the user's cart.
func (h *SongHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req := h.parse(r)

	result, err := h.engine.AddToCart(r.Context(), req.userID, r.Form["check_list"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.cartChanged("added", len(result.Added))
	h.metrics.cartChanged("skipped", len(result.Skipped))
	h.redirect(w, r, req)
}

// RemoveFromCart deletes the checked songs from the user's cart.
func (h *SongHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	req := h.parse(r)

	removed, err := h.engine.RemoveFromCart(r.Context(), req.userID, r.Form["check_list"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.cartChanged("removed", removed)
	h.redirect(w, r, req)
}

// Checkout moves the user's cart into their history.
func (h *SongHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	req := h.parse(r)

	result, err := h.engine.Checkout(r.Context(), req.userID, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if len(result.Moved) > 0 || result.Duplicate > 0 {
		h.metrics.checkedOut(len(result.Moved))
	}
	h.redirect(w, r, req)
}

// ViewCart lists the user's cart.
func (h *SongHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	h.owned(w, r, web.PageCart, "Cart", h.engine.Cart)
}

// PreviewCheckout lists the songs a checkout would move.
func (h *SongHandler) PreviewCheckout(w http.ResponseWriter, r *http.Request) {
	h.owned(w, r, web.PageCart, "Checkout", h.engine.PreviewCheckout)
}

// ViewHistory lists the user's purchases.
func (h *SongHandler) ViewHistory(w http.ResponseWriter, r *http.Request) {
	h.owned(w, r, web.PageHistory, "History", h.engine.History)
}

type ownedQuery func(ctx context.Context, userID string, limit int) ([]*models.Song, error)

func (h *SongHandler) owned(w http.ResponseWriter, r *http.Request, name web.PageName, title string, query ownedQuery) {
	req := h.parse(r)

	songs, err := query(r.Context(), req.userID, h.limits.ViewLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := req.page(title)
	page.Songs = songs
	page.Action = name == web.PageCart
	h.render(w, name, page)
}

func (h *SongHandler) render(w http.ResponseWriter, name web.PageName, page web.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, name, page); err != nil {
		h.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// redirect sends POSTs back to the catalog, keeping the user and genre.
func (h *SongHandler) redirect(w http.ResponseWriter, r *http.Request, req request) {
	http.Redirect(w, r, "/?"+web.StateQuery(req.userID, req.genre), http.StatusFound)
}

// fail maps engine errors onto HTTP statuses.
func (h *SongHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, shared.ErrStorageUnavailable):
		h.metrics.storageFailed(r.URL.Path)
		h.logger.Error("storage unavailable", "path", r.URL.Path, "error", err)
		http.Error(w, "Storage unavailable, try again later", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request abandoned", "path", r.URL.Path, "error", err)
		http.Error(w, "Request timed out", http.StatusServiceUnavailable)
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
