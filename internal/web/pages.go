package web

import (
	"fmt"
	"html"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>Spotify connected</title></head>
<body>
<h2>Spotify account linked</h2>
<p>You can close this page and go back to Telegram.</p>
</body>
</html>`

// deniedPage renders the authorization-denied response. The error value
// comes from the callback query string, so it is escaped.
func deniedPage(reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Spotify authorization failed</title></head>
<body>
<h3>Spotify authorization failed</h3>
<p>Error: %s</p>
</body>
</html>`, html.EscapeString(reason))
}
