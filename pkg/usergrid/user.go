package usergrid

import (
	"github.com/google/uuid"
)

// Entity types with dedicated Go types.
const (
	UserEntityType   = "user"
	DeviceEntityType = "device"
)

// User property names.
const (
	PropertyUsername  = "username"
	PropertyEmail     = "email"
	PropertyPassword  = "password"
	PropertyAge       = "age"
	PropertyActivated = "activated"
	PropertyDisabled  = "disabled"
	PropertyPicture   = "picture"
)

// User is an entity of type "user".
type User struct {
	*BaseEntity

	// Auth holds the token minted when this user logged in.
	Auth *UserAuth
}

// NewUser returns a user entity, optionally named.
func NewUser(name ...string) *User {
	return &User{BaseEntity: NewEntity(UserEntityType, name...)}
}

// Username returns the username.
func (u *User) Username() string {
	return u.stringProperty(PropertyUsername)
}

// SetUsername sets the username.
func (u *User) SetUsername(username string) {
	_ = u.Put(PropertyUsername, username)
}

// Email returns the email address.
func (u *User) Email() string {
	return u.stringProperty(PropertyEmail)
}

// SetEmail sets the email address.
func (u *User) SetEmail(email string) {
	_ = u.Put(PropertyEmail, email)
}

// SetPassword sets the password sent when the user is created.
func (u *User) SetPassword(password string) {
	_ = u.Put(PropertyPassword, password)
}

// SetName sets the display name.
func (u *User) SetName(name string) {
	_ = u.Put(PropertyName, name)
}

// Picture returns the picture URL.
func (u *User) Picture() string {
	return u.stringProperty(PropertyPicture)
}

// Age returns the age, or 0 when unset.
func (u *User) Age() int {
	v, _ := u.Get(PropertyAge)
	n, _ := toInt64(v)

	return int(n)
}

// Activated reports whether the account is activated.
func (u *User) Activated() bool {
	return u.boolProperty(PropertyActivated)
}

// Disabled reports whether the account is disabled.
func (u *User) Disabled() bool {
	return u.boolProperty(PropertyDisabled)
}

// UsernameOrEmail returns the username if set, else the email.
func (u *User) UsernameOrEmail() string {
	if username := u.Username(); username != "" {
		return username
	}

	return u.Email()
}

// UUIDOrUsername returns the uuid if set, else the username.
func (u *User) UUIDOrUsername() string {
	if id := u.UUID(); id != "" {
		return id
	}

	return u.Username()
}

func (u *User) boolProperty(name string) bool {
	v, _ := u.Get(name)

	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	case float64:
		return b != 0
	default:
		return false
	}
}

// Device property names.
const (
	PropertyDeviceModel    = "deviceModel"
	PropertyDevicePlatform = "devicePlatform"
	PropertyDeviceOSVer    = "deviceOSVersion"
)

// Device is an entity of type "device".
type Device struct {
	*BaseEntity
}

// NewDevice returns a device entity with the given identifier, or a fresh
// random one when id is empty.
func NewDevice(id string) *Device {
	if id == "" {
		id = uuid.NewString()
	}

	base := NewEntity(DeviceEntityType)
	base.properties[PropertyUUID] = id

	return &Device{BaseEntity: base}
}

// Model returns the device model.
func (d *Device) Model() string {
	return d.stringProperty(PropertyDeviceModel)
}

// Platform returns the device platform.
func (d *Device) Platform() string {
	return d.stringProperty(PropertyDevicePlatform)
}

// OSVersion returns the device OS version.
func (d *Device) OSVersion() string {
	return d.stringProperty(PropertyDeviceOSVer)
}

// Asset is a binary payload attached to an entity.
type Asset struct {
	Filename    string
	Data        []byte
	ContentType string
}

// NewAsset returns an asset. An empty content type defaults to application/octet-stream.
func NewAsset(filename string, data []byte, contentType string) *Asset {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Asset{Filename: filename, Data: data, ContentType: contentType}
}

// Size returns the payload length.
func (a *Asset) Size() int64 {
	return int64(len(a.Data))
}
