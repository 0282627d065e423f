// quill-server runs the text adventure server over SSH.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/quillmud/quill/ai"
	"github.com/quillmud/quill/auth"
	"github.com/quillmud/quill/game"
	"github.com/quillmud/quill/pemfile"
	"github.com/quillmud/quill/server"
	"github.com/quillmud/quill/storage"
	gossh "golang.org/x/crypto/ssh"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	addr := flag.String("ssh", "127.0.0.1:15000", "Where to listen for SSH connections.")
	dir := flag.String("dir", filepath.Join(os.Getenv("HOME"), ".quillmud"), "Where to keep the database, keys and logs.")
	adventure := flag.String("adventure", "", "Adventure ID players start in.")
	model := flag.String("model", "", "Chat model for AI driven characters.")
	logToStderr := flag.Bool("log-stderr", false, "Also log to stderr.")

	flag.Parse()

	if err := os.MkdirAll(*dir, 0700); err != nil {
		log.Fatal(err)
	}

	logSink := io.Writer(&lumberjack.Logger{
		Filename:   filepath.Join(*dir, "server.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	})
	if *logToStderr {
		logSink = io.MultiWriter(logSink, os.Stderr)
	}
	log.SetOutput(logSink)

	ctx := context.Background()

	store, err := storage.New(ctx, *dir)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	var chat ai.Client
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		chat = ai.NewAnthropic(apiKey, *model)
	} else {
		log.Print("ANTHROPIC_API_KEY not set, AI characters will be unavailable")
	}

	authenticator := auth.New(ctx, store, auth.DefaultTokenTTL)
	g := game.New(store, authenticator, chat, *adventure)

	pemBytes, err := pemfile.EnsureKeyPair(
		filepath.Join(*dir, "private.pem"),
		filepath.Join(*dir, "public.pem"),
	)
	if err != nil {
		log.Fatal(err)
	}
	signer, err := gossh.ParsePrivateKey(pemBytes)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Listening on %q with host key %q", *addr, gossh.FingerprintSHA256(signer.PublicKey()))
	log.Fatal(server.New(g, authenticator).ListenAndServe(*addr, pemBytes))
}
