package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songcart/internal/formatter"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/desertthunder/songcart/internal/tasks"
	"github.com/urfave/cli/v3"
)

func uidArgs(cmd *cli.Command) ([]string, error) {
	uids := cmd.Args().Slice()
	if len(uids) == 0 {
		return nil, fmt.Errorf("%w: at least one song uid", shared.ErrMissingArgument)
	}
	return uids, nil
}

// CartAdd copies the named catalog songs into the user's cart.
func (r *Runner) CartAdd(ctx context.Context, cmd *cli.Command) error {
	uids, err := uidArgs(cmd)
	if err != nil {
		return err
	}

	engine, err := r.connect()
	if err != nil {
		return err
	}

	user := cmd.String("user")
	result, err := engine.AddToCart(ctx, user, uids)
	if err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	for _, song := range result.Added {
		r.writePlain("+ %s - %s\n", song.ArtistName, song.Title)
	}
	for _, uid := range result.Skipped {
		r.writePlain("- skipped %s\n", uid)
	}
	return r.writePlain("✓ Added %d of %d songs to %s's cart\n", len(result.Added), result.Requested, user)
}

// CartRemove deletes the named songs from the user's cart.
func (r *Runner) CartRemove(ctx context.Context, cmd *cli.Command) error {
	uids, err := uidArgs(cmd)
	if err != nil {
		return err
	}

	engine, err := r.connect()
	if err != nil {
		return err
	}

	removed, err := engine.RemoveFromCart(ctx, cmd.String("user"), uids)
	if err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return r.writePlain("✓ Removed %d songs from cart\n", removed)
}

// CartView lists the user's cart, newest first.
func (r *Runner) CartView(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	user := cmd.String("user")
	songs, err := engine.Cart(ctx, user, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	return r.writeSongs(cmd, fmt.Sprintf("Cart of %s", user), songs)
}

// CartCheckout moves the user's cart into their history, printing each song as it moves.
func (r *Runner) CartCheckout(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	user := cmd.String("user")
	if cmd.Bool("preview") {
		songs, err := engine.PreviewCheckout(ctx, user, 0)
		if err != nil {
			return fmt.Errorf("failed to preview checkout: %w", err)
		}
		return r.writeSongs(cmd, fmt.Sprintf("Checkout preview for %s", user), songs)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.MoveSongs:
				r.writePlain("  %s\n", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	result, err := engine.Checkout(ctx, user, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("checkout failed, cart unchanged: %w", err)
	}

	if result.Duplicate > 0 {
		r.writePlain("%d songs were already purchased and left the cart\n", result.Duplicate)
	}
	return r.writePlain("✓ Checked out %d songs\n", len(result.Moved))
}

// HistoryView lists the user's purchases, newest first.
func (r *Runner) HistoryView(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	user := cmd.String("user")
	songs, err := engine.History(ctx, user, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return r.writeSongs(cmd, fmt.Sprintf("History of %s", user), songs)
}

// HistoryExport writes the user's full purchase history in the chosen format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.connect()
	if err != nil {
		return err
	}

	user := cmd.String("user")
	songs, err := engine.History(ctx, user, 0)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	title := fmt.Sprintf("History of %s", user)
	if cmd.Bool("stdout") {
		return formatter.WriteExport(r.output, format, title, songs)
	}

	path, err := formatter.WriteFileExport(cmd.String("output"), "history_"+user, format, title, songs)
	if err != nil {
		return err
	}

	r.logger.Info("history exported", "user", user, "songs", len(songs), "path", path)
	return r.writePlain("✓ Exported %d songs to %s\n", len(songs), path)
}
