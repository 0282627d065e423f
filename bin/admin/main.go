// quill-admin manages a server's database directly: it bootstraps
// admin accounts and demo content while the server is not running.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/quillmud/quill/auth"
	"github.com/quillmud/quill/storage"
	"github.com/quillmud/quill/structs"
	"golang.org/x/term"
)

func main() {
	dir := flag.String("dir", filepath.Join(os.Getenv("HOME"), ".quillmud"), "Server database directory.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  create-admin <username>  Create or promote an admin account\n")
		fmt.Fprintf(os.Stderr, "  seed                     Install the demo adventure\n")
		fmt.Fprintf(os.Stderr, "  load <file.json>         Import a world definition file\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch args[0] {
	case "create-admin":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(1)
		}
		err = createAdmin(ctx, store, args[1])
	case "seed":
		err = seed(ctx, store)
	case "load":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(1)
		}
		err = load(ctx, store, args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createAdmin(ctx context.Context, store *storage.Storage, username string) error {
	fmt.Print("Password: ")
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}
	hash, err := auth.HashSecret(string(secret))
	if err != nil {
		return err
	}
	user, err := store.LoadUser(ctx, username)
	if err != nil {
		user = &structs.User{Name: username}
	}
	user.PasswordHash = hash
	user.Admin = true
	if err := store.StoreUser(ctx, user); err != nil {
		return err
	}
	fmt.Printf("Admin %q ready.\n", username)
	return nil
}

// worldFile is the JSON shape `load` consumes: entities grouped per
// kind, in any order.
type worldFile struct {
	Adventures []*structs.Adventure `json:"adventures"`
	Locations  []*structs.Location  `json:"locations"`
	Items      []*structs.Item      `json:"items"`
	Characters []*structs.Character `json:"characters"`
}

func load(ctx context.Context, store *storage.Storage, path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	world := worldFile{}
	if err := json.Unmarshal(blob, &world); err != nil {
		return err
	}
	count := 0
	save := func(entity structs.Entity) error {
		if err := store.SaveEntity(ctx, entity); err != nil {
			return fmt.Errorf("saving %s %q: %w", entity.EntityKind(), entity.EntityID(), err)
		}
		count++
		return nil
	}
	for _, a := range world.Adventures {
		if err := save(a); err != nil {
			return err
		}
	}
	for _, l := range world.Locations {
		if err := save(l); err != nil {
			return err
		}
	}
	for _, i := range world.Items {
		if err := save(i); err != nil {
			return err
		}
	}
	for _, c := range world.Characters {
		if err := save(c); err != nil {
			return err
		}
	}
	fmt.Printf("Imported %d entities from %s.\n", count, path)
	return nil
}

func seed(ctx context.Context, store *storage.Storage) error {
	entities := []structs.Entity{
		&structs.Adventure{
			ID:          "temple",
			Name:        "The Sunken Temple",
			Description: "A ruin half swallowed by the marsh.",
			Start:       "temple-entrance",
		},
		&structs.Location{
			ID:          "temple-entrance",
			Adventure:   "temple",
			Name:        "Temple Entrance",
			Description: "Vines cover a cracked stone doorway.",
			Exits:       structs.ExitMap{"north": "temple-library"},
		},
		&structs.Location{
			ID:          "temple-library",
			Adventure:   "temple",
			Name:        "Temple Library",
			Description: "Rotting shelves sag under waterlogged scrolls.",
			Exits:       structs.ExitMap{"south": "temple-entrance"},
		},
		&structs.Item{
			ID:          "lantern",
			Adventure:   "temple",
			Location:    "temple-entrance",
			Name:        "brass lantern",
			Description: "Dented but still watertight.",
			Portable:    true,
		},
		&structs.Character{
			ID:          "hermit",
			Adventure:   "temple",
			Location:    "temple-entrance",
			Name:        "old hermit",
			Description: "Wrapped in oilcloth against the damp.",
			Dialogue: structs.StringList{
				"Leave me be.",
				"The library holds answers, if the water spared them.",
			},
		},
		&structs.Character{
			ID:          "oracle",
			Adventure:   "temple",
			Location:    "temple-library",
			Name:        "blind oracle",
			Description: "Her milky eyes follow you anyway.",
			AIDriven:    true,
			Persona:     "Ancient, cryptic, kind underneath. Speaks in riddles about the temple's past.",
		},
	}
	for _, entity := range entities {
		if err := store.SaveEntity(ctx, entity); err != nil {
			return err
		}
	}
	fmt.Println("Demo adventure \"temple\" installed.")
	return nil
}
