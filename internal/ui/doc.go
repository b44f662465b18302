// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses the catalog and manages one user's cart:
//  1. [GenreListView] : Pick a catalog genre
//  2. [CatalogView] : Select songs and add them to the cart
//  3. [CartView] : Remove songs or start a checkout
//  4. [ConfirmView] : Confirm the checkout
//  5. [CheckoutView] : Monitor checkout progress
//  6. [ResultView] : Show what moved into history
//  7. [HistoryView] : Browse purchased songs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Checkout progress flows through a channel from the SongEngine, so the view stays responsive while songs move.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
