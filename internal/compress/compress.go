package compress

// Codec compresses snapshot archives before they hit disk.
type Codec interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
	// Ext is the filename suffix appended to archives written with this
	// codec ("" for none).
	Ext() string
}

// ForName returns the codec registered under name, defaulting to Nop.
func ForName(name string) Codec {
	switch name {
	case "gzip":
		return NewGZip()
	case "brotli":
		return NewBrotli()
	case "lz4":
		return NewLZ4()
	}
	return NewNop()
}

type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (n Nop) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (n Nop) Decode(data []byte) ([]byte, error) {
	return data, nil
}

func (n Nop) Ext() string {
	return ""
}
