// Package srp implements the Secure Remote Password protocol, version 6a,
// as specified by RFC 2945 and RFC 5054.
//
// SRP is a password-authenticated key exchange: the client proves knowledge
// of a password to a server that stores only a salt and a password-derived
// verifier. The password never crosses the wire and the server cannot
// recover it from the verifier. A mutual proof step authenticates both
// sides and leaves them with a shared session secret.
//
// The package exchanges typed values, not serialized messages; transport,
// session storage and user persistence belong to the caller. A typical
// exchange:
//
//	cfg, _ := srp.NewConfig(srp.Group2048, crypto.SHA256)
//	client, server := srp.NewClient(cfg), srp.NewServer(cfg)
//
//	// registration, one-time
//	salt, verifier, _ := client.GenerateSaltAndVerifier(username, password)
//
//	// login
//	clientKeys, _ := client.GenerateKeys()
//	serverKeys, _ := server.GenerateKeys(verifier)
//	Sc, _ := client.SharedSecret(username, password, salt, clientKeys, serverKeys.Public)
//	M1, _ := client.ClientProof(username, salt, clientKeys.Public, serverKeys.Public, Sc)
//	Ss, _ := server.SharedSecret(clientKeys.Public, serverKeys, verifier)
//	M2, err := server.VerifyClientProof(M1, username, salt, clientKeys.Public, serverKeys.Public, Ss)
//	// err == nil: client authenticated; send M2 back
//	err = client.VerifyServerProof(M2, M1, clientKeys.Public, Sc)
//	// err == nil: server authenticated too
//
// All values that are elements of Z_N are left-padded to the byte length of
// N before hashing, per RFC 5054. Proof comparisons are constant-time.
// Modular exponentiation relies on math/big, which is not constant-time;
// see Config for the caveat.
package srp
