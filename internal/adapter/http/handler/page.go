package handler

import "html/template"

// IndexTemplateName is the name the upload page is registered under
const IndexTemplateName = "index"

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
</head>
<body>
<h1>{{ .Title }}</h1>
<input type="file" id="file-upload" accept="{{ .Accept }}">
<div id="result">{{ .Result }}</div>
<script>
document.getElementById('file-upload').addEventListener('change', function (event) {
    const file = event.target.files[0];
    if (!file) return;

    const formData = new FormData();
    formData.append('file', file);

    fetch('{{ .UploadPath }}', { method: 'POST', body: formData })
        .then(function (response) {
            if (response.status === 204) return null;
            return response.text();
        })
        .then(function (fragment) {
            if (fragment !== null) {
                document.getElementById('result').innerHTML = fragment;
            }
        })
        .catch(function (error) {
            console.error('Error:', error);
            document.getElementById('result').innerText = '{{ .GenericError }}';
        });
});
</script>
</body>
</html>
`

// IndexTemplate parses the upload page
func IndexTemplate() *template.Template {
	return template.Must(template.New(IndexTemplateName).Parse(indexPage))
}
