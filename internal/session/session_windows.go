//go:build windows

package session

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/blackwell-systems/vaultkeeper"
)

// dpapiStore encrypts the token with the OS user-scoped data-protection
// service (DPAPI) and writes the ciphertext directly at the well-known
// path — on Windows there is no separate marker, the file itself is the
// store.
type dpapiStore struct {
	dotDir string
}

// New constructs the platform Store for the current OS.
func New(dotDir string) Store {
	return &dpapiStore{dotDir: dotDir}
}

func (s *dpapiStore) Save(token string) error {
	ciphertext, err := dpapiProtect([]byte(token))
	if err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.save.encrypt", "", err)
	}
	return writeMarker(s.dotDir, ciphertext)
}

func (s *dpapiStore) Load() (string, bool, error) {
	ciphertext, present, err := readMarker(s.dotDir)
	if err != nil || !present {
		return "", false, err
	}
	if len(ciphertext) == 0 {
		return "", false, nil
	}

	plaintext, err := dpapiUnprotect(ciphertext)
	if err != nil {
		// Decryption only succeeds for the same user on the same
		// machine; anything else is an unreadable token,
		// treated as absent rather than a hard failure.
		_ = removeMarker(s.dotDir)
		return "", false, nil
	}
	return string(plaintext), true, nil
}

func (s *dpapiStore) Clear() error {
	return removeMarker(s.dotDir)
}

var (
	modcrypt32           = windows.NewLazySystemDLL("crypt32.dll")
	procCryptProtectData = modcrypt32.NewProc("CryptProtectData")
	procCryptUnprotect   = modcrypt32.NewProc("CryptUnprotectData")
)

// dataBlob mirrors the Win32 CRYPTOAPI_BLOB / DATA_BLOB struct.
type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(data []byte) *dataBlob {
	if len(data) == 0 {
		return &dataBlob{}
	}
	return &dataBlob{cbData: uint32(len(data)), pbData: &data[0]}
}

func (b *dataBlob) bytes() []byte {
	if b.pbData == nil || b.cbData == 0 {
		return nil
	}
	out := make([]byte, b.cbData)
	copy(out, unsafe.Slice(b.pbData, b.cbData))
	return out
}

// dpapiProtect calls CryptProtectData with no additional entropy,
// user-scoped (no CRYPTPROTECT_LOCAL_MACHINE flag), matching the
// ambient-login-credentials behavior this design requires.
func dpapiProtect(plaintext []byte) ([]byte, error) {
	in := newBlob(plaintext)
	var out dataBlob

	r, _, err := procCryptProtectData.Call(
		uintptr(unsafe.Pointer(in)),
		0, // description
		0, // optional entropy
		0, // reserved
		0, // prompt struct
		0, // flags
		uintptr(unsafe.Pointer(&out)),
	)
	if r == 0 {
		return nil, err
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(out.pbData))))
	return out.bytes(), nil
}

func dpapiUnprotect(ciphertext []byte) ([]byte, error) {
	in := newBlob(ciphertext)
	var out dataBlob

	r, _, err := procCryptUnprotect.Call(
		uintptr(unsafe.Pointer(in)),
		0,
		0,
		0,
		0,
		0,
		uintptr(unsafe.Pointer(&out)),
	)
	if r == 0 {
		return nil, err
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(out.pbData))))
	return out.bytes(), nil
}
