package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/viper"

	"github.com/gumboot/siteadmin/editor"
)

const clientTimeout = 30 * time.Second

// session is a logged-in editor bound to a running server.
type session struct {
	client *editor.Client
	editor *editor.Editor
}

func connect(ctx context.Context) (*session, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("siteadmin_url", "http://localhost:3000")

	password := v.GetString("ADMIN_PASSWORD")
	if password == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}
	client, err := editor.NewClient(v.GetString("SITEADMIN_URL"))
	if err != nil {
		return nil, err
	}
	gate := editor.NewGate(client)
	if err := gate.Unlock(ctx, password); err != nil {
		return nil, err
	}
	return &session{client: client, editor: editor.New(gate, client)}, nil
}

func runConfig(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: siteadmin config <show|set-hero|add-feature|set-feature|remove-feature|add-blog|set-blog|remove-blog> ...")
	}
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	s, err := connect(ctx)
	if err != nil {
		return err
	}
	ed := s.editor
	if err := ed.Load(ctx); err != nil {
		return err
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "show":
		return printDocument(ed)
	case "set-hero":
		if len(args) != 2 {
			return errors.New("usage: siteadmin config set-hero <field> <value>")
		}
		err = ed.SetHeroField(args[0], args[1])
	case "add-feature":
		err = ed.AddFeature()
	case "set-feature":
		if len(args) != 3 {
			return errors.New("usage: siteadmin config set-feature <index> <title|desc> <value>")
		}
		err = withIndex(args[0], func(i int) error { return ed.SetFeature(i, args[1], args[2]) })
	case "remove-feature":
		if len(args) != 1 {
			return errors.New("usage: siteadmin config remove-feature <index>")
		}
		err = withIndex(args[0], ed.RemoveFeature)
	case "add-blog":
		entry, addErr := ed.AddBlog()
		if addErr == nil {
			fmt.Printf("added blog %s (%s)\n", entry.ID, entry.Slug)
		}
		err = addErr
	case "set-blog":
		if len(args) != 3 {
			return errors.New("usage: siteadmin config set-blog <index> <field> <value>")
		}
		err = withIndex(args[0], func(i int) error { return ed.SetBlogField(i, args[1], args[2]) })
	case "remove-blog":
		if len(args) != 1 {
			return errors.New("usage: siteadmin config remove-blog <index>")
		}
		err = withIndex(args[0], ed.RemoveBlog)
	default:
		return fmt.Errorf("unknown config command %q", cmd)
	}
	if err != nil {
		return err
	}
	if !ed.Dirty() {
		fmt.Println("no changes")
		return nil
	}
	if err := ed.Save(ctx); err != nil {
		return err
	}
	fmt.Println("saved")
	return nil
}

func printDocument(ed *editor.Editor) error {
	out, err := ed.JSON()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

func withIndex(arg string, fn func(int) error) error {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("index %q: %w", arg, err)
	}
	return fn(i)
}

func runBlog(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: siteadmin blog <list|delete> ...")
	}
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	s, err := connect(ctx)
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		posts, err := s.client.ListBlogPosts(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tPUBLISHED\tTITLE")
		for _, p := range posts {
			published := "draft"
			if p.PublishedAt != nil {
				published = p.PublishedAt.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Slug, published, p.Title)
		}
		return tw.Flush()
	case "delete":
		if len(args) != 2 {
			return errors.New("usage: siteadmin blog delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("id %q: %w", args[1], err)
		}
		if err := s.client.DeleteBlogPost(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted post %d\n", id)
		return nil
	}
	return fmt.Errorf("unknown blog command %q", args[0])
}

func runDownloads(args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return errors.New("usage: siteadmin downloads list")
	}
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	s, err := connect(ctx)
	if err != nil {
		return err
	}
	items, err := s.client.ListDownloads(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
