package hostcli

import (
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

// wireItem mirrors the host CLI's lower-camel JSON item shape. The URI
// `match` field is intentionally untyped-and-dropped: it varies in shape
// across host CLI versions (sometimes an int, sometimes null, sometimes a
// string enum) and surfacing it would force vaultkeeper's own types to
// carry a schema-flexible value, which is exactly what the compact disk
// format in internal/metacache cannot tolerate.
type wireItem struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Type           int           `json:"type"`
	Notes          string        `json:"notes"`
	Favorite       bool          `json:"favorite"`
	FolderID       string        `json:"folderId"`
	OrganizationID string        `json:"organizationId"`
	RevisionDate   time.Time     `json:"revisionDate"`
	Login          *wireLogin    `json:"login,omitempty"`
	Card           *wireCard     `json:"card,omitempty"`
	Identity       *wireIdentity `json:"identity,omitempty"`
}

type wireLogin struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	TOTP     string    `json:"totp"`
	URIs     []wireURI `json:"uris"`
}

// wireURI carries the `match` field only so json.Unmarshal has somewhere
// to put it; the value is never read back out.
type wireURI struct {
	URI   string `json:"uri"`
	Match any    `json:"match"`
}

type wireCard struct {
	CardholderName string `json:"cardholderName"`
	Number         string `json:"number"`
	Brand          string `json:"brand"`
	ExpMonth       string `json:"expMonth"`
	ExpYear        string `json:"expYear"`
	Code           string `json:"code"`
}

type wireIdentity struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address1"`
}

func (w wireItem) toEntry() vaultkeeper.VaultEntry {
	e := vaultkeeper.VaultEntry{
		ID:       w.ID,
		Name:     w.Name,
		Kind:     vaultkeeper.EntryKind(w.Type),
		Notes:    w.Notes,
		Favorite: w.Favorite,
		FolderID: w.FolderID,
		OrgID:    w.OrganizationID,
		Revision: w.RevisionDate,
	}

	if w.Login != nil {
		uris := make([]string, len(w.Login.URIs))
		for i, u := range w.Login.URIs {
			uris[i] = u.URI
		}
		e.Login = &vaultkeeper.LoginBlock{
			Username: w.Login.Username,
			Password: w.Login.Password,
			TOTPSeed: w.Login.TOTP,
			URIs:     uris,
		}
	}

	if w.Card != nil {
		e.Card = &vaultkeeper.CardBlock{
			Holder:   w.Card.CardholderName,
			Number:   w.Card.Number,
			Brand:    w.Card.Brand,
			ExpMonth: w.Card.ExpMonth,
			ExpYear:  w.Card.ExpYear,
			Code:     w.Card.Code,
		}
	}

	if w.Identity != nil {
		e.Identity = &vaultkeeper.IdentityBlock{
			FullName: w.Identity.FullName,
			Email:    w.Identity.Email,
			Phone:    w.Identity.Phone,
			Address:  w.Identity.Address,
		}
	}

	return e
}
