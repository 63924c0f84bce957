// Package terminal handles the interactive console: unbuffered key input,
// output translation for raw mode, and styled status output.
package terminal

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// KeyInterrupt is Ctrl-C as delivered in raw mode.
const KeyInterrupt = '\x03'

// KeyReader delivers single keypresses from a file without line buffering.
// When the file is a terminal it is switched to raw mode until Close.
type KeyReader struct {
	file   *os.File
	reader cancelreader.CancelReader
	state  *term.State

	keys      chan rune
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// OpenKeyReader starts reading keys from f. The key channel is closed when
// f reaches EOF or the reader is closed.
func OpenKeyReader(f *os.File) (*KeyReader, error) {
	k := &KeyReader{
		file: f,
		keys: make(chan rune, 16),
		done: make(chan struct{}),
	}

	if fd := int(f.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		k.state = state
	}

	reader, err := cancelreader.NewReader(f)
	if err != nil {
		// epoll rejects regular files and some devices; plain reads still work
		reader, err = cancelreader.NewReader(struct{ io.Reader }{f})
	}
	if err != nil {
		k.restore()
		return nil, err
	}
	k.reader = reader

	k.wg.Add(1)
	go k.readLoop()

	return k, nil
}

// Raw reports whether the terminal was switched to raw mode.
func (k *KeyReader) Raw() bool { return k.state != nil }

// Keys returns the key channel.
func (k *KeyReader) Keys() <-chan rune { return k.keys }

// Close stops reading and restores the terminal. It is safe to call more
// than once.
func (k *KeyReader) Close() error {
	k.closeOnce.Do(func() {
		close(k.done)
		k.reader.Cancel()
		k.wg.Wait()
		k.closeErr = k.reader.Close()
		if err := k.restore(); err != nil && k.closeErr == nil {
			k.closeErr = err
		}
	})
	return k.closeErr
}

func (k *KeyReader) restore() error {
	if k.state == nil {
		return nil
	}
	return term.Restore(int(k.file.Fd()), k.state)
}

func (k *KeyReader) readLoop() {
	defer k.wg.Done()
	defer close(k.keys)

	in := bufio.NewReader(k.reader)
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			return
		}
		select {
		case k.keys <- r:
		case <-k.done:
			return
		}
	}
}
