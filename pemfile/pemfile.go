// Package pemfile generates and loads the server's SSH host key pair.
package pemfile

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/quillmud/quill"
	gossh "golang.org/x/crypto/ssh"
)

const keyBits = 4096

// GenKeyPair writes a new RSA private key PEM and its authorized_keys
// form public key to the given paths.
func GenKeyPair(privatePath, publicPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return quill.WithStack(err)
	}
	if err := os.WriteFile(privatePath, pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		}),
		0600,
	); err != nil {
		return quill.WithStack(err)
	}

	pub, err := gossh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return quill.WithStack(err)
	}
	if err := os.WriteFile(publicPath, gossh.MarshalAuthorizedKey(pub), 0600); err != nil {
		return quill.WithStack(err)
	}
	return nil
}

// EnsureKeyPair loads the private key PEM, generating the pair first
// when the private key does not exist yet.
func EnsureKeyPair(privatePath, publicPath string) ([]byte, error) {
	if _, err := os.Stat(privatePath); os.IsNotExist(err) {
		if err := GenKeyPair(privatePath, publicPath); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, quill.WithStack(err)
	}
	pemBytes, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, quill.WithStack(err)
	}
	return pemBytes, nil
}
