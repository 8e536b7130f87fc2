package soundboard

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
)

const (
	FilesPerPage = 6
	MaxPageCount = 36
)

type Sound struct {
	Path string
	// Description is Path[descStart:descEnd].
	descStart, descEnd int
}

func (s Sound) Empty() bool {
	return s.Path == ""
}

func (s Sound) Description() string {
	return s.Path[s.descStart:s.descEnd]
}

type Page struct {
	Name    string
	Sounds  [FilesPerPage]Sound
	Address Address
}

func (p Page) SoundCount() int {
	n := 0
	for _, s := range p.Sounds {
		if !s.Empty() {
			n++
		}
	}
	return n
}

// Catalog is the indexed soundboard. Page i was read from the directory
// with index i+1; missing indices leave empty pages.
type Catalog struct {
	Pages   []Page
	Buttons int
	// Addressable is false when there are more pages than quick-access
	// sequences can reach.
	Addressable bool
}

func (c *Catalog) PageCount() int {
	if c == nil {
		return 0
	}
	return len(c.Pages)
}

func (c *Catalog) Page(i int) (Page, bool) {
	if c == nil || i < 0 || i >= len(c.Pages) {
		return Page{}, false
	}
	return c.Pages[i], true
}

// Sound returns the sound in slot of page, if any.
func (c *Catalog) Sound(page, slot int) (Sound, bool) {
	p, ok := c.Page(page)
	if !ok || slot < 0 || slot >= FilesPerPage || p.Sounds[slot].Empty() {
		return Sound{}, false
	}
	return p.Sounds[slot], true
}

func (c *Catalog) Resolve(pressed Address) (Range, error) {
	if c.PageCount() == 0 {
		return Range{}, fmt.Errorf("%w %s", ErrNoMatch, pressed)
	}
	if !c.Addressable {
		return Range{}, ErrCapacity
	}
	addrs := make([]Address, len(c.Pages))
	for i, p := range c.Pages {
		addrs[i] = p.Address
	}
	return Resolve(addrs, pressed)
}

// parseEntry splits "<index>_<label>[_ignored][.ext]" and returns the
// byte offsets of label within name.
func parseEntry(name string, stopAtDot bool) (index, start, end int, err error) {
	first := strings.IndexByte(name, '_')
	if first < 0 {
		return 0, 0, 0, errors.New("no separator")
	}
	index, err = strconv.Atoi(name[:first])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad index %q", name[:first])
	}
	start = first + 1
	end = len(name)
	if i := strings.IndexByte(name[start:], '_'); i >= 0 {
		end = start + i
	}
	if stopAtDot {
		i := strings.IndexByte(name[start:], '.')
		if i < 0 {
			return 0, 0, 0, errors.New("no extension")
		}
		end = min(end, start+i)
	}
	return index, start, end, nil
}

// Build indexes dir within fsys. Badly named entries are skipped.
func Build(fsys fs.FS, dir string, buttons int, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.Default()
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("soundboard: read %s: %w", dir, err)
	}

	type pageDir struct {
		index int
		name  string
		label string
	}
	var dirs []pageDir
	highest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		index, start, end, err := parseEntry(e.Name(), false)
		if err != nil {
			log.Debug("skipping page directory", "name", e.Name(), "reason", err)
			continue
		}
		if index < 1 || index > MaxPageCount {
			log.Debug("skipping page directory", "name", e.Name(), "reason", "index out of range")
			continue
		}
		dirs = append(dirs, pageDir{index: index, name: e.Name(), label: e.Name()[start:end]})
		highest = max(highest, index)
	}

	cat := &Catalog{Pages: make([]Page, highest), Buttons: buttons}
	sounds := 0
	for _, d := range dirs {
		page := Page{Name: d.label}
		sub := path.Join(dir, d.name)
		files, err := fs.ReadDir(fsys, sub)
		if err != nil {
			log.Warn("skipping unreadable page", "dir", sub, "error", err)
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			slot, start, end, err := parseEntry(f.Name(), true)
			if err != nil {
				log.Debug("skipping sound", "page", d.name, "name", f.Name(), "reason", err)
				continue
			}
			if slot < 1 || slot > FilesPerPage {
				log.Debug("skipping sound", "page", d.name, "name", f.Name(), "reason", "index out of range")
				continue
			}
			prefix := len(sub) + 1
			page.Sounds[slot-1] = Sound{
				Path:      sub + "/" + f.Name(),
				descStart: prefix + start,
				descEnd:   prefix + end,
			}
		}
		sounds += page.SoundCount()
		cat.Pages[d.index-1] = page
	}

	addrs, err := AssignAddresses(len(cat.Pages), buttons)
	if err != nil {
		log.Warn("quick access disabled", "error", err)
	} else {
		cat.Addressable = true
		for i := range cat.Pages {
			cat.Pages[i].Address = addrs[i]
		}
	}

	log.Info("soundboard indexed", "dir", dir, "pages", len(cat.Pages), "sounds", sounds)
	for i, p := range cat.Pages {
		log.Debug("soundboard page", "index", i+1, "name", p.Name, "address", p.Address.String(), "sounds", p.SoundCount())
	}
	return cat, nil
}
