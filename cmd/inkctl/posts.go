package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"Inkwell/internal/core/posts"
)

var (
	postsJSON  bool
	postsLimit int
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect blog posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPosts(cmd.Context(), func(svc posts.Service) error {
			var list []*posts.Post
			if postsLimit > 0 {
				page, err := svc.ListPostsPage(cmd.Context(), postsLimit, "")
				if err != nil {
					return err
				}
				list = page.Posts
			} else {
				var err error
				if list, err = svc.ListPosts(cmd.Context()); err != nil {
					return err
				}
			}
			return printPosts(cmd.OutOrStdout(), list, postsJSON)
		})
	},
}

var postsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find posts whose title starts with term (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPosts(cmd.Context(), func(svc posts.Service) error {
			list, err := svc.SearchPostsByTitle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPosts(cmd.OutOrStdout(), list, postsJSON)
		})
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPosts(cmd.Context(), func(svc posts.Service) error {
			post, found, err := svc.GetPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("post %s not found", args[0])
			}
			return printJSON(cmd.OutOrStdout(), post)
		})
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsSearchCmd, postsGetCmd)

	postsCmd.PersistentFlags().BoolVar(&postsJSON, "json", false, "Output in JSON format")
	postsListCmd.Flags().IntVar(&postsLimit, "limit", 0, "Show at most this many posts (0 for all)")
}

// withPosts opens the store, runs fn with an uncached post service, and closes the store
func withPosts(ctx context.Context, fn func(posts.Service) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()
	return fn(posts.NewPostService(posts.NewRepository(store, nil), nil, nil))
}

func printPosts(w io.Writer, list []*posts.Post, asJSON bool) error {
	if asJSON {
		return printJSON(w, list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No posts.")
		return err
	}
	for _, p := range list {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t+%d/-%d\t%d comments\n",
			p.ID, p.CreatedAt.Format("2006-01-02"), p.Title, p.Likes, p.Dislikes, len(p.Comments)); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}
