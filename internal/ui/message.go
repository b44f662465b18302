package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgGenresFetched MsgKind = iota
	MsgSongsFetched
	MsgCartChanged
	MsgProgressUpdate
	MsgCheckoutComplete
)

type genresFetched struct {
	genres []string
	err    error
}

type songsFetched struct {
	view  ViewState
	title string
	songs []*models.Song
	err   error
}

type cartChanged struct {
	status string
	err    error
}

type checkoutComplete struct {
	result *tasks.CheckoutResult
	err    error
}

// genresFetchedMsg is the constructor for [MsgGenresFetched]
func genresFetchedMsg(genres []string, err error) Msg {
	return Msg{kind: MsgGenresFetched, data: genresFetched{genres, err}}
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]. view is the list the songs belong to.
func songsFetchedMsg(view ViewState, title string, songs []*models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsFetched{view, title, songs, err}}
}

// cartChangedMsg is the constructor for [MsgCartChanged]
func cartChangedMsg(status string, err error) Msg {
	return Msg{kind: MsgCartChanged, data: cartChanged{status, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// checkoutCompleteMsg is the constructor for [MsgCheckoutComplete]
func checkoutCompleteMsg(result *tasks.CheckoutResult, err error) Msg {
	return Msg{kind: MsgCheckoutComplete, data: checkoutComplete{result, err}}
}
