package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagrs/movietagger/internal/collection"
	"github.com/tagrs/movietagger/internal/id"
)

type tagRow struct {
	Name   string `json:"name"`
	Movies int    `json:"movies"`
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with their member counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := ctx.loadCollection(cmd)
			if err != nil {
				return err
			}

			tags := coll.Tags()
			out := make([]tagRow, 0, len(tags))
			for _, t := range tags {
				out = append(out, tagRow{Name: t.Name, Movies: t.Members.Len()})
			}

			if ctx.jsonOut {
				return writeJSON(cmd, out)
			}
			if len(out) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags found")
				return nil
			}

			rows := make([][]string, 0, len(out))
			for _, t := range out {
				rows = append(rows, []string{t.Name, strconv.Itoa(t.Movies)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tag", "Movies"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

type movieRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	HasPoster bool     `json:"has_poster"`
	Tags      []string `json:"tags"`
}

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	var tagFilter string
	var query string

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List movies with the tags they are linked into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := ctx.loadCollection(cmd)
			if err != nil {
				return err
			}

			tags := coll.Tags()
			if tagFilter != "" && !hasTag(tags, tagFilter) {
				return fmt.Errorf("tag %q not found", tagFilter)
			}

			needle := collection.FoldName(strings.TrimSpace(query))
			out := make([]movieRow, 0)
			for _, m := range coll.Movies() {
				if needle != "" && !strings.Contains(collection.FoldName(m.Name), needle) {
					continue
				}
				linked := linkedTags(tags, m.ID)
				if tagFilter != "" && !slices.Contains(linked, tagFilter) {
					continue
				}
				out = append(out, movieRow{
					ID:        m.ID.String(),
					Name:      m.Name,
					HasPoster: m.HasPoster(),
					Tags:      linked,
				})
			}

			if ctx.jsonOut {
				return writeJSON(cmd, out)
			}
			if len(out) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies found")
				return nil
			}

			rows := make([][]string, 0, len(out))
			for _, m := range out {
				poster := "no"
				if m.HasPoster {
					poster = "yes"
				}
				rows = append(rows, []string{m.ID[:12], m.Name, poster, strings.Join(m.Tags, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Poster", "Tags"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tagFilter, "tag", "t", "", "Only movies linked into this tag")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only movies whose name contains this text")
	return cmd
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle TAG MOVIE",
		Short: "Link a movie into a tag, or unlink it when already linked",
		Long:  "MOVIE is either a 40 character movie ID or the movie's directory name.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := ctx.loadCollection(cmd)
			if err != nil {
				return err
			}

			movieID := resolveMovie(args[1])
			movie, err := coll.Movie(movieID)
			if err != nil {
				return err
			}

			linked, err := coll.ToggleTag(cmd.Context(), args[0], movieID)
			if err != nil {
				return err
			}

			if ctx.jsonOut {
				return writeJSON(cmd, map[string]any{
					"tag":      args[0],
					"movie_id": movieID.String(),
					"linked":   linked,
				})
			}

			verb := "Unlinked"
			if linked {
				verb = "Linked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q %s %q\n", verb, movie.Name, direction(linked), args[0])
			return nil
		},
	}
}

func newIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "id PATH...",
		Short: "Print the movie ID for each directory path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				h, err := id.FromPath(path)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), h)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", h, path)
			}
			return nil
		},
	}
}

// resolveMovie accepts a movie ID in hex or falls back to hashing the
// argument as a directory name.
func resolveMovie(arg string) id.Hash {
	if h, err := id.Parse(arg); err == nil {
		return h
	}
	return id.FromName(arg)
}

func hasTag(tags []collection.Tag, name string) bool {
	return slices.ContainsFunc(tags, func(t collection.Tag) bool { return t.Name == name })
}

func linkedTags(tags []collection.Tag, movieID id.Hash) []string {
	linked := make([]string, 0)
	for _, t := range tags {
		if t.Members.Contains(movieID) {
			linked = append(linked, t.Name)
		}
	}
	return linked
}

func direction(linked bool) string {
	if linked {
		return "into"
	}
	return "from"
}
