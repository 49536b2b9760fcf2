package assets

import _ "embed"

//go:embed consent.html
var ConsentHTML []byte

//go:embed wallet.html
var WalletHTML []byte

//go:embed error.html
var ErrorHTML []byte

//go:embed app-icon.png
var AppIconPNG []byte
