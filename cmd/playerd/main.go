// Package main is the entry point for the playerd daemon.
// playerd is a desktop audio player backend: it plays a local library and
// user playlists, mirrors playback state to an external remote control over
// a websocket, and integrates with OS media sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyoburon/electron-music-player/internal/catalog"
	"github.com/dyoburon/electron-music-player/internal/config"
	"github.com/dyoburon/electron-music-player/internal/engine"
	"github.com/dyoburon/electron-music-player/internal/library"
	"github.com/dyoburon/electron-music-player/internal/media"
	"github.com/dyoburon/electron-music-player/internal/remote"
	"github.com/dyoburon/electron-music-player/internal/session"
)

// Version is set at build time via ldflags
var Version = "dev"

// Config holds daemon flags
type Config struct {
	ConfigDir  string
	MusicDir   string
	ControlURL string
	Verbose    bool
}

func main() {
	cfg := parseFlags()

	if cfg.Verbose {
		log.Printf("playerd version %s starting...", Version)
	}

	// Create context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigDir, "config", "", "Configuration directory (default: ~/.config/playerd)")
	flag.StringVar(&cfg.MusicDir, "music", "", "Music library directory (default: from config)")
	flag.StringVar(&cfg.ControlURL, "control", "", "Remote control websocket URL (default: from config)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if cfg.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		cfg.ConfigDir = homeDir + "/.config/playerd"
	}

	return cfg
}

func run(ctx context.Context, cfg *Config) error {
	// Initialize config manager
	configMgr := config.NewManager(cfg.ConfigDir)
	if err := configMgr.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	playerCfg := configMgr.Get()

	musicDir := playerCfg.MusicDir
	if cfg.MusicDir != "" {
		musicDir = cfg.MusicDir
	}
	controlURL := playerCfg.ControlURL
	if cfg.ControlURL != "" {
		controlURL = cfg.ControlURL
	}

	// Library storage
	store := library.NewStore(musicDir)
	tracks, err := store.ListLibraryTracks()
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}
	log.Printf("[LIBRARY] Found %d tracks in %s", len(tracks), musicDir)

	// Playlist catalog
	cat := catalog.New(store)
	playlists, err := store.LoadPlaylists()
	if err != nil {
		log.Printf("[CATALOG] Warning: failed to load playlists: %v", err)
	}
	cat.Seed(playlists)

	// Audio engine
	eng := engine.New(playerCfg.Visualization.Enabled)
	defer eng.Close()

	// Session over engine and catalog
	sess := session.New(eng, cat, store)
	sess.SeedLibrary(tracks)
	sess.SetVolume(playerCfg.Audio.DefaultVolume)

	// Engine lifecycle events back into the session
	eng.SetOnEnded(sess.HandleTrackEnded)
	eng.SetOnMetadata(sess.HandleMetadataLoaded)
	eng.SetOnTimeUpdate(sess.HandleTimeUpdate)
	eng.SetOnPlayError(sess.HandlePlayError)

	// OS media session (platform-specific)
	mediaSession, err := media.NewSession()
	if err != nil {
		log.Printf("[MEDIA] Warning: failed to initialize media session: %v", err)
		log.Printf("[MEDIA] Continuing without OS media integration")
		mediaSession = media.NewNoOpSession()
	} else {
		log.Printf("[MEDIA] Media session initialized successfully")
	}
	defer mediaSession.Close()
	mediaSession.SetCommandHandler(mediaHandler{sess: sess})

	// Mirror session changes into the OS media session
	cancelMedia := sess.Subscribe(func(ev session.Event) {
		switch ev.Type {
		case session.EventTrackChanged:
			st := sess.Status()
			meta := library.ReadMeta(library.Track{Name: ev.TrackName, SourceRef: ev.SourceRef})
			mediaSession.UpdateMetadata(media.Metadata{
				Title:    meta.Title,
				Artist:   meta.Artist,
				Album:    meta.Album,
				Duration: time.Duration(st.Duration * float64(time.Second)),
			})
			mediaSession.UpdatePlaybackState(media.StatePlaying, 0)
		case session.EventPlayStateChanged:
			state := media.StatePaused
			if ev.IsPlaying {
				state = media.StatePlaying
			}
			st := sess.Status()
			mediaSession.UpdatePlaybackState(state, time.Duration(st.CurrentTime*float64(time.Second)))
		}
	})
	defer cancelMedia()

	// Remote control channel
	channel := remote.New(controlURL, sess, remote.Options{
		ReconnectDelay: time.Duration(playerCfg.ReconnectDelayMs) * time.Millisecond,
	})
	cancelRemote := sess.Subscribe(channel.PublishEvent)
	defer cancelRemote()
	go channel.Run(ctx)

	// Watch the music directory for new files
	watcher, err := library.NewWatcher(store, sess.AppendLibraryTrack)
	if err != nil {
		log.Printf("[LIBRARY] Warning: failed to watch %s: %v", musicDir, err)
	} else {
		defer watcher.Close()
	}

	log.Printf("playerd ready: library %s, control %s", musicDir, controlURL)
	<-ctx.Done()
	return nil
}

// mediaHandler translates OS media commands into session calls.
type mediaHandler struct {
	sess *session.Session
}

func (h mediaHandler) OnCommand(cmd media.Command, data interface{}) error {
	switch cmd {
	case media.CmdPlay, media.CmdPause, media.CmdPlayPause, media.CmdStop:
		st := h.sess.Status()
		switch cmd {
		case media.CmdPlay:
			if !st.IsPlaying {
				h.sess.TogglePlay()
			}
		case media.CmdPause, media.CmdStop:
			if st.IsPlaying {
				h.sess.TogglePlay()
			}
		case media.CmdPlayPause:
			h.sess.TogglePlay()
		}
	case media.CmdNext:
		h.sess.Next()
	case media.CmdPrevious:
		h.sess.Previous()
	case media.CmdSeek:
		if pos, ok := data.(time.Duration); ok {
			h.sess.Seek(pos.Seconds())
		}
	}
	return nil
}
