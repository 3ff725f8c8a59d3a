package srp

import (
	"math/big"
)

// Client implements the client side of the SRP-6a exchange. It carries no
// session state; every method is a pure computation over its arguments, so
// a single Client may serve many concurrent sessions.
type Client struct {
	cfg *Config
}

// NewClient returns a client bound to the given configuration.
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg}
}

// Config returns the client's configuration.
func (c *Client) Config() *Config {
	return c.cfg
}

// GenerateSaltAndVerifier produces the registration pair the server stores
// against the username: a fresh random salt and the verifier v = g^x mod N
// with x = H(salt | H(username | ":" | password)).
func (c *Client) GenerateSaltAndVerifier(username, password string) ([]byte, *Key, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, nil, err
	}

	x := c.deriveX(username, password, salt)
	defer x.SetInt64(0)

	v := new(big.Int).Exp(c.cfg.group.G, x, c.cfg.group.N)
	return salt, c.cfg.key(v), nil
}

// GenerateKeys draws a fresh ephemeral key pair (a, A = g^a mod N).
// A zero public key would trivially break the exchange; the draw is
// repeated until A mod N != 0.
func (c *Client) GenerateKeys() (*KeyPair, error) {
	for {
		a, err := randomInt(ephemeralSize)
		if err != nil {
			return nil, err
		}

		A := new(big.Int).Exp(c.cfg.group.G, a, c.cfg.group.N)
		if c.cfg.isZeroModN(A) {
			a.SetInt64(0)
			continue
		}

		return &KeyPair{Public: c.cfg.key(A), Private: c.cfg.key(a)}, nil
	}
}

// SharedSecret computes the client-side shared secret
// S = (B - k*g^x)^(a + u*x) mod N.
// It fails with ErrNullServerKey when B mod N == 0 or u == 0.
func (c *Client) SharedSecret(username, password string, salt []byte, keys *KeyPair, B *Key) (*Key, error) {
	x := c.deriveX(username, password, salt)
	defer x.SetInt64(0)
	return c.sharedSecret(x, keys, B)
}

// SharedSecretBytes is the raw-password variant: x is derived from the
// message 0x3A | password, i.e. with no username in the inner hash. Servers
// that enroll verifiers this way accept any username at login.
func (c *Client) SharedSecretBytes(password, salt []byte, keys *KeyPair, B *Key) (*Key, error) {
	message := make([]byte, 0, len(password)+1)
	message = append(message, ':')
	message = append(message, password...)

	x := new(big.Int).SetBytes(c.cfg.hashBytes(salt, c.cfg.hashBytes(message)))
	defer x.SetInt64(0)
	return c.sharedSecret(x, keys, B)
}

func (c *Client) sharedSecret(x *big.Int, keys *KeyPair, B *Key) (*Key, error) {
	N := c.cfg.group.N
	bigB := B.Int()

	if c.cfg.isZeroModN(bigB) {
		return nil, ErrNullServerKey
	}

	u := c.cfg.computeU(keys.Public.n, bigB)
	if u.Sign() == 0 {
		return nil, ErrNullServerKey
	}

	// base = (B - k*g^x) mod N; big.Int.Mod yields the non-negative
	// representative, so a negative difference lands back in Z_N.
	gx := new(big.Int).Exp(c.cfg.group.G, x, N)
	kgx := new(big.Int).Mul(c.cfg.k, gx)
	base := new(big.Int).Sub(bigB, kgx)
	base.Mod(base, N)

	// exponent = a + u*x
	exp := new(big.Int).Mul(u, x)
	exp.Add(exp, keys.Private.n)

	S := new(big.Int).Exp(base, exp, N)

	gx.SetInt64(0)
	kgx.SetInt64(0)
	exp.SetInt64(0)

	return c.cfg.key(S), nil
}

// ClientProof computes the proof M1 the client sends after deriving the
// shared secret.
func (c *Client) ClientProof(username string, salt []byte, A, B, S *Key) ([]byte, error) {
	K := c.cfg.sessionKey(S)
	return c.cfg.clientProof(username, salt, A, B, K)
}

// ServerProof computes the expected server proof M2 for the given client
// proof and shared secret.
func (c *Client) ServerProof(A *Key, M1 []byte, S *Key) []byte {
	return c.cfg.serverProof(A, M1, c.cfg.sessionKey(S))
}

// VerifyServerProof checks the server's proof M2 against the client's own
// recomputation. A mismatch means the server did not know the verifier and
// must not be trusted.
func (c *Client) VerifyServerProof(M2, M1 []byte, A, S *Key) error {
	expected := c.ServerProof(A, M1, S)
	if !constantTimeEqual(M2, expected) {
		return ErrInvalidServerProof
	}
	return nil
}

// deriveX computes x = H(salt | H(username | ":" | password)).
func (c *Client) deriveX(username, password string, salt []byte) *big.Int {
	inner := c.cfg.hashBytes([]byte(username), []byte(":"), []byte(password))
	return new(big.Int).SetBytes(c.cfg.hashBytes(salt, inner))
}
