package main

import (
	"net"
	"strconv"
)

// splitHostPort splits an address into host and port, using defaultPort if no port is specified.
func splitHostPort(addr string, defaultPort int) (string, string, error) {
	ipaddr, port, err := net.SplitHostPort(addr)
	if err != nil {
		addr = addr + ":" + strconv.Itoa(defaultPort)
		ipaddr, port, err = net.SplitHostPort(addr)
		if err != nil {
			return "", "", err
		}
	}
	return ipaddr, port, nil
}

// listenAddress completes addr with the default port.
func listenAddress(addr string) (string, error) {
	host, port, err := splitHostPort(addr, defaultPort)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, port), nil
}

// baseURL turns a server address into the URL the client talks to.
func baseURL(server string, secure bool) (string, error) {
	host, port, err := splitHostPort(server, defaultPort)
	if err != nil {
		return "", err
	}
	if host == "" {
		host = "127.0.0.1"
	}
	scheme := "http"
	if secure {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, port), nil
}
