package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/track"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extWAV  = ".wav"

	userAgent = "novatone/1.0"

	maxPlaylistBytes = 64 << 10
	maxPlaylistDepth = 2
)

// ErrEmptyPlaylist is returned when an m3u playlist lists no entries.
var ErrEmptyPlaylist = errors.New("playlist has no entries")

// Play loads t and starts playback, replacing any current track.
// Local tracks are read from File, remote ones streamed from URL.
func (p *Player) Play(ctx context.Context, t track.Track) error {
	stream, format, err := p.open(ctx, t)
	if err != nil {
		return err
	}
	return p.start(t, stream, format)
}

func (p *Player) open(ctx context.Context, t track.Track) (beep.StreamSeekCloser, beep.Format, error) {
	switch {
	case t.File != "":
		return openFile(t.File)
	case t.URL != "":
		return p.openURL(ctx, t.URL, 0)
	default:
		return nil, beep.Format{}, ErrNoSource
	}
}

func openFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsAudioFile(path) {
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	if ext == extFLAC {
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, beep.Format{}, err
		}
	}

	stream, format, err := decode(f, ext)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return stream, format, nil
}

// openURL streams a remote file. The body outlives ctx: cancelling the
// caller's context after Play returns does not cut the stream.
// Playlists (m3u) are followed to their first entry.
func (p *Player) openURL(ctx context.Context, rawURL string, depth int) (beep.StreamSeekCloser, beep.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, beep.Format{}, err
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, beep.Format{}, fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if isPlaylist(rawURL, contentType) {
		defer resp.Body.Close()
		if depth >= maxPlaylistDepth {
			return nil, beep.Format{}, fmt.Errorf("open stream: playlist nesting too deep at %s", rawURL)
		}
		entry, err := firstEntry(io.LimitReader(resp.Body, maxPlaylistBytes), rawURL)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("read playlist: %w", err)
		}
		p.logger.Debug("playlist resolved", zap.String("url", rawURL), zap.String("entry", entry))
		return p.openURL(ctx, entry, depth+1)
	}

	ext := formatOf(rawURL, contentType)
	stream, format, err := decode(resp.Body, ext)
	if err != nil {
		resp.Body.Close()
		return nil, beep.Format{}, fmt.Errorf("decode stream: %w", err)
	}

	p.logger.Debug("stream opened",
		zap.String("url", rawURL),
		zap.String("format", ext),
		zap.Int("sampleRate", int(format.SampleRate)))
	return stream, format, nil
}

// formatOf guesses the container from the content type, then the URL path.
// Provider streams without a hint are MP3.
func formatOf(rawURL, contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/flac", "audio/x-flac":
			return extFLAC
		case "audio/ogg", "audio/vorbis", "application/ogg":
			return extOGG
		case "audio/wav", "audio/x-wav", "audio/wave":
			return extWAV
		case "audio/mpeg", "audio/mp3":
			return extMP3
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if IsAudioFile(u.Path) {
			return strings.ToLower(filepath.Ext(u.Path))
		}
	}
	return extMP3
}

func isPlaylist(rawURL, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/x-mpegurl", "audio/mpegurl", "application/x-mpegurl", "application/vnd.apple.mpegurl":
			return true
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(filepath.Ext(u.Path))
		return ext == ".m3u" || ext == ".m3u8"
	}
	return false
}

// firstEntry returns the first URL listed in an m3u body, resolved against base.
func firstEntry(r io.Reader, base string) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		ref, err := url.Parse(line)
		if err != nil {
			return "", err
		}
		return baseURL.ResolveReference(ref).String(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", ErrEmptyPlaylist
}

func decode(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extFLAC:
		return flac.Decode(rc)
	case extOGG:
		return vorbis.Decode(rc)
	case extWAV:
		return wav.Decode(rc)
	default:
		return mp3.Decode(rc)
	}
}

// ProbeDuration decodes a local file's header to find its length.
func ProbeDuration(path string) (time.Duration, error) {
	stream, format, err := openFile(path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return format.SampleRate.D(stream.Len()), nil
}

// IsAudioFile reports whether path has an extension the player can decode.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case extMP3, extFLAC, extOGG, extWAV:
		return true
	}
	return false
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is a syncsafe integer in bytes 6-9
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

// start wires a decoded stream into the source slot and starts the device on first use.
func (p *Player) start(t track.Track, stream beep.StreamSeekCloser, format beep.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	p.gen++
	gen := p.gen

	p.baseRatio = float64(format.SampleRate) / float64(p.sink.SampleRate())
	p.resampler = beep.ResampleRatio(4, p.baseRatio*p.rate, stream)
	p.pitch = newPitchShifter(p.resampler, p.pitchFactor())
	p.ctrl = &beep.Ctrl{Streamer: p.pitch}
	p.stream = stream
	p.format = format
	p.track = &t

	chain := beep.Seq(p.ctrl, beep.Callback(func() {
		// runs on the audio goroutine under the device lock
		go p.finish(gen)
	}))

	// Drain any stale end signal from the previous track
	select {
	case <-p.endedCh:
	default:
	}

	p.sink.Lock()
	p.source.Set(chain)
	p.sink.Unlock()

	if !p.started {
		if err := p.sink.Play(p.output); err != nil {
			p.stopLocked()
			return fmt.Errorf("start output: %w", err)
		}
		p.started = true
	}

	p.state = Playing
	p.logger.Info("playing", zap.String("id", t.ID), zap.String("title", t.Title))
	return nil
}

// finish handles a track reaching its end.
func (p *Player) finish(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.stream == nil {
		p.mu.Unlock()
		return
	}
	p.releaseLocked()
	p.state = Stopped
	fn := p.onEnded
	p.mu.Unlock()

	select {
	case p.endedCh <- struct{}{}:
	default:
	}
	if fn != nil {
		fn()
	}
}
