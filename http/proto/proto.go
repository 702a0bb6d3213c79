package proto

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

// String returns the protocol token as it appears on the wire.
func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return "HTTP/x.x"
	}
}

// Above11 reports whether the version is greater than HTTP/1.1. Such requests
// are served as HTTP/1.1, as the handler speaks nothing above it.
func Above11(major, minor uint8) bool {
	return major > 1 || (major == 1 && minor > 1)
}

// Parse maps a version pair onto the protocol enum. Anything but 1.0 and 1.1
// is Unknown.
func Parse(major, minor uint8) Proto {
	switch {
	case major == 1 && minor == 0:
		return HTTP10
	case major == 1 && minor == 1:
		return HTTP11
	default:
		return Unknown
	}
}
