package moc

// Limits bounds the resources a single decode may consume.
// Zero fields fall back to the defaults.
type Limits struct {
	MaxInputSize    int64 // raw bytes, and bytes after decompression
	MaxArrayLen     int   // elements in any array
	MaxStringLen    int   // bytes in any string
	MaxDepth        int   // nested tagged values
	MaxTableEntries int   // reference table size
}

func defaultLimits() Limits {
	return Limits{
		MaxInputSize:    256 << 20, // 256 MiB
		MaxArrayLen:     16 << 20,
		MaxStringLen:    64 << 10, // 64 KiB
		MaxDepth:        256,
		MaxTableEntries: 16 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxInputSize == 0 {
		l.MaxInputSize = d.MaxInputSize
	}
	if l.MaxArrayLen == 0 {
		l.MaxArrayLen = d.MaxArrayLen
	}
	if l.MaxStringLen == 0 {
		l.MaxStringLen = d.MaxStringLen
	}
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxTableEntries == 0 {
		l.MaxTableEntries = d.MaxTableEntries
	}
	return l
}
