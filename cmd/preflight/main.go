// Command preflight validates a hosts file before deploying it: it
// parses the document, reports per-group counts, and resolves every
// address that is not an IP literal against the system resolver.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"pingwatch/pkg/topology"
)

func main() {
	hostsFile := flag.String("hosts", "hosts.yaml", "path to the hosts file")
	resolvConf := flag.String("resolv-conf", "/etc/resolv.conf", "resolver configuration")
	flag.Parse()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	// Parse warnings are part of the report, not a log file.
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	doc, err := topology.Load(*hostsFile, logger)
	if err != nil {
		fail(err.Error())
	}
	if len(doc.Hosts) == 0 {
		warn("hosts file contains no hosts")
	}

	groups := make(map[string]int)
	for _, h := range doc.Hosts {
		groups[h.Group]++
	}
	for label, n := range groups {
		ok(fmt.Sprintf("group %q: %d hosts", label, n))
	}

	resolver, err := newResolver(*resolvConf)
	if err != nil {
		warn(fmt.Sprintf("skipping DNS checks: %v", err))
		ok("preflight passed")
		return
	}

	failures := 0
	for _, h := range doc.Hosts {
		if net.ParseIP(h.Address) != nil {
			continue
		}
		if err := resolver.resolve(h.Address); err != nil {
			warn(fmt.Sprintf("%s does not resolve: %v", h.Address, err))
			failures++
		}
	}

	if failures > 0 {
		fail(fmt.Sprintf("%d host names did not resolve", failures))
	}
	ok("preflight passed")
}

type resolver struct {
	client *dns.Client
	server string
}

func newResolver(resolvConf string) (*resolver, error) {
	conf, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", resolvConf, err)
	}
	if len(conf.Servers) == 0 {
		return nil, fmt.Errorf("no nameservers in %s", resolvConf)
	}
	return &resolver{
		client: &dns.Client{Timeout: 3 * time.Second},
		server: net.JoinHostPort(conf.Servers[0], conf.Port),
	}, nil
}

// resolve queries for an A record and falls back to AAAA before
// declaring the name unresolvable.
func (r *resolver) resolve(name string) error {
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(name), qtype)
		msg.RecursionDesired = true

		resp, _, err := r.client.Exchange(msg, r.server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode])
			continue
		}
		if len(resp.Answer) > 0 {
			return nil
		}
		lastErr = fmt.Errorf("no answer")
	}
	return lastErr
}
