package natsqueue

import (
	"time"

	"github.com/nats-io/nats.go"
)

func defaultOptions() []nats.Option {
	return []nats.Option{
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logf("connect", "disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logf("connect", "reconnected to %s", nc.ConnectedUrl())
			recordReconnect()
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logf("connect", "connection closed")
		}),
	}
}

// Connect dials a NATS server with a bare URL, no authentication. This is
// a thin bootstrap wrapper (spec §1 non-goal "connection bootstrap /
// credentials helpers"); the storage adapter itself only ever consumes
// an already-connected *nats.Conn.
func Connect(url string) (*nats.Conn, error) {
	return ConnectWithOptions(url)
}

// ConnectWithCredentials dials using a .creds file (JWT + NKey seed).
func ConnectWithCredentials(url, credsPath string) (*nats.Conn, error) {
	return ConnectWithOptions(url, nats.UserCredentials(credsPath))
}

// ConnectWithUserPass dials using a static username/password.
func ConnectWithUserPass(url, user, password string) (*nats.Conn, error) {
	return ConnectWithOptions(url, nats.UserInfo(user, password))
}

// ConnectWithOptions dials with full control over nats.Option (client
// name, custom dialers, TLS, ...), always applied on top of the default
// reconnect/disconnect logging and metrics wiring.
func ConnectWithOptions(url string, opts ...nats.Option) (*nats.Conn, error) {
	all := append(defaultOptions(), opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, natsErr("connect to "+url, err)
	}
	return nc, nil
}
