package swaggermcp

import (
	"bytes"
	"html/template"
)

// Swagger UI shell served at /docs. It loads the generation's own
// /openapi.json, so the page always reflects the active endpoint set.
var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}} - Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      SwaggerUIBundle({
        url: "/openapi.json",
        dom_id: "#swagger-ui",
        tryItOutEnabled: true,
      });
    };
  </script>
</body>
</html>
`))

func docsPage(title string) []byte {
	var buf bytes.Buffer
	// The template only fails on an unrenderable Title, which cannot
	// happen for a plain string field.
	_ = docsTemplate.Execute(&buf, struct{ Title string }{Title: title})
	return buf.Bytes()
}
