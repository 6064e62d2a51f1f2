package tui

import (
	"fmt"
	"io"
	"net"

	"github.com/muesli/termenv"
)

// BannerInfo describes the server being started.
type BannerInfo struct {
	Name        string
	Version     string
	Addr        string
	CSRF        bool
	MetricsAddr string
}

// PrintBanner outputs the startup notice of the development server.
// Colors are only emitted when w is a terminal.
func PrintBanner(w io.Writer, info BannerInfo) {
	out := termenv.NewOutput(w)
	bullet := out.String(" * ").Foreground(out.Color("#818cf8"))
	warn := out.String("WARNING: This is a development server. Do not use it in a production deployment.").
		Foreground(out.Color("#fb7185")).Bold()

	fmt.Fprintf(w, "%sServing %s (%s)\n", bullet, info.Name, info.Version)
	fmt.Fprintf(w, "%sCSRF protection: %s\n", bullet, onOff(info.CSRF))
	fmt.Fprintln(w, warn)

	host, port, err := net.SplitHostPort(info.Addr)
	if err != nil {
		fmt.Fprintf(w, "%sRunning on http://%s\n", bullet, info.Addr)
	} else if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		fmt.Fprintf(w, "%sRunning on all addresses (%s)\n", bullet, displayHost(host))
		fmt.Fprintf(w, "%sRunning on http://%s\n", bullet, net.JoinHostPort("127.0.0.1", port))
	} else {
		fmt.Fprintf(w, "%sRunning on http://%s\n", bullet, info.Addr)
	}

	if info.MetricsAddr != "" {
		fmt.Fprintf(w, "%sMetrics on http://%s/metrics\n", bullet, info.MetricsAddr)
	}
	fmt.Fprintf(w, "%s%s\n", bullet, out.String("Press CTRL+C to quit").Faint())
}

func displayHost(host string) string {
	if host == "" {
		return "0.0.0.0"
	}
	return host
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
