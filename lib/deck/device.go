package deck

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"rafaelmartins.com/p/usbhid"
)

const elgatoVendorID = 0x0fd9

var ErrNoDevice = errors.New("deck: no Stream Deck found")

type Model struct {
	Name      string
	Keys      int
	KeyCols   int
	KeySize   int
	FlipKeys  bool
	LCDWidth  int
	LCDHeight int
}

var ModelXL = Model{
	Name:     "XL",
	Keys:     32,
	KeyCols:  8,
	KeySize:  96,
	FlipKeys: true,
}

var ModelPlus = Model{
	Name:      "Plus",
	Keys:      8,
	KeyCols:   4,
	KeySize:   120,
	LCDWidth:  800,
	LCDHeight: 100,
}

var productModels = map[uint16]*Model{
	0x006c: &ModelXL,
	0x008f: &ModelXL,
	0x0084: &ModelPlus,
}

// Device is an opened Stream Deck.
type Device struct {
	dev   *usbhid.Device
	model *Model
}

// Open opens the first supported Stream Deck.
func Open() (*Device, error) {
	devices, err := usbhid.Enumerate(func(dev *usbhid.Device) bool {
		return dev.VendorId() == elgatoVendorID && productModels[dev.ProductId()] != nil
	})
	if err != nil {
		return nil, fmt.Errorf("deck: enumerate: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	dev := devices[0]
	if err := dev.Open(true); err != nil {
		return nil, fmt.Errorf("deck: open: %w", err)
	}
	return &Device{dev: dev, model: productModels[dev.ProductId()]}, nil
}

func (d *Device) Model() *Model        { return d.model }
func (d *Device) Close() error         { return d.dev.Close() }
func (d *Device) SerialNumber() string { return d.dev.SerialNumber() }
func (d *Device) Product() string      { return d.dev.Product() }

func (d *Device) SetBrightness(perc int) error {
	perc = max(0, min(perc, 100))
	pl := make([]byte, d.dev.GetFeatureReportLength())
	pl[0] = 0x08
	pl[1] = byte(perc)
	return d.dev.SetFeatureReport(3, pl)
}

func (d *Device) SetKeyImage(key int, img image.Image) error {
	if key < 0 || key >= d.model.Keys {
		return fmt.Errorf("deck: invalid key %d", key)
	}

	sz := d.model.KeySize
	scaled := image.NewRGBA(image.Rect(0, 0, sz, sz))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	if d.model.FlipKeys {
		scaled = rotate180(scaled)
	}

	data, err := encodeJPEG(scaled)
	if err != nil {
		return err
	}
	return d.send(data, 8, func(hdr []byte, page, n int, last bool) {
		hdr[0] = 0x02
		hdr[1] = 0x07
		hdr[2] = byte(key)
		hdr[3] = boolByte(last)
		binary.LittleEndian.PutUint16(hdr[4:], uint16(n))
		binary.LittleEndian.PutUint16(hdr[6:], uint16(page))
	})
}

func (d *Device) SetLCDImage(x, y, w, h int, img image.Image) error {
	if d.model.LCDWidth == 0 {
		return fmt.Errorf("deck: %s has no LCD", d.model.Name)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	data, err := encodeJPEG(scaled)
	if err != nil {
		return err
	}
	return d.send(data, 16, func(hdr []byte, page, n int, last bool) {
		hdr[0] = 0x02
		hdr[1] = 0x0C
		binary.LittleEndian.PutUint16(hdr[2:], uint16(x))
		binary.LittleEndian.PutUint16(hdr[4:], uint16(y))
		binary.LittleEndian.PutUint16(hdr[6:], uint16(w))
		binary.LittleEndian.PutUint16(hdr[8:], uint16(h))
		hdr[10] = boolByte(last)
		binary.LittleEndian.PutUint16(hdr[11:], uint16(page))
		binary.LittleEndian.PutUint16(hdr[13:], uint16(n))
	})
}

// send splits data into output reports, each starting with a header
// filled in by header.
func (d *Device) send(data []byte, hdrLen int, header func(hdr []byte, page, n int, last bool)) error {
	reportLen := int(d.dev.GetOutputReportLength())
	chunkLen := reportLen - hdrLen

	for page, start := 0, 0; start < len(data); page++ {
		end := min(start+chunkLen, len(data))
		report := make([]byte, reportLen)
		header(report[:hdrLen], page, end-start, end == len(data))
		copy(report[hdrLen:], data[start:end])
		if err := d.dev.SetOutputReport(2, report); err != nil {
			return fmt.Errorf("deck: write report: %w", err)
		}
		start = end
	}
	return nil
}

type KeyEvent struct {
	Key     int
	Pressed bool
}

// ReadKeys reports key state changes until the device fails.
func (d *Device) ReadKeys(ch chan<- KeyEvent) error {
	states := make([]byte, d.model.Keys)
	for {
		_, buf, err := d.dev.GetInputReport()
		if err != nil {
			return fmt.Errorf("deck: read: %w", err)
		}
		// key reports start with 0x00; the Plus also sends dial and
		// touch reports which are not used
		if len(buf) < 4 || buf[0] != 0x00 {
			continue
		}
		for i := 0; i < d.model.Keys && 3+i < len(buf); i++ {
			st := buf[3+i]
			if st != states[i] {
				states[i] = st
				ch <- KeyEvent{Key: i, Pressed: st > 0}
			}
		}
	}
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("deck: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func rotate180(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.X-1-x+b.Min.X, b.Max.Y-1-y+b.Min.Y, src.At(x, y))
		}
	}
	return dst
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
