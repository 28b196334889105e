package generator

import (
	"bytes"
	"sort"
	"strings"
	"text/template"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/config"

	"github.com/Masterminds/sprig/v3"
)

// Header carried by every generated file.
const generatedHeader = "// Code generated by toolbench. DO NOT EDIT."

// wrapperExt is the extension of generated wrapper units.
const wrapperExt = ".ts"

var templateFuncs = sprig.TxtFuncMap()

var (
	wrapperTemplate   = template.Must(template.New("wrapper").Funcs(templateFuncs).Parse(wrapperTemplateSource))
	indexTemplate     = template.Must(template.New("index").Funcs(templateFuncs).Parse(indexTemplateSource))
	discoveryTemplate = template.Must(template.New("discovery").Funcs(templateFuncs).Parse(discoveryTemplateSource))
	runtimeTemplate   = template.Must(template.New("runtime").Funcs(templateFuncs).Parse(runtimeTemplateSource))
)

const wrapperTemplateSource = `// Code generated by toolbench. DO NOT EDIT.
// Server: {{ .Server }}
// Tool: {{ .Tool }}

import { callTool } from "../client";

export interface {{ .InterfaceName }} {
{{- range .Members }}
{{- if .Comment }}
  /** {{ .Comment }} */
{{- end }}
  {{ .Name }}{{ if .Optional }}?{{ end }}: {{ .Type }};
{{- end }}
{{- if .IndexSignature }}
  [key: string]: {{ .IndexSignature }};
{{- end }}
}

{{ if .DescriptionLines -}}
/**
{{- range .DescriptionLines }}
 * {{ . }}
{{- end }}
 */
{{ end -}}
export async function {{ .FunctionName }}(input: {{ .InterfaceName }}{{ if .EmptyInput }} = {}{{ end }}): Promise<unknown> {
  return callTool({{ .Server | quote }}, {{ .Tool | quote }}, input);
}
`

const indexTemplateSource = `// Code generated by toolbench. DO NOT EDIT.
// Server: {{ .Name }}

{{ range .Tools }}export * from "./{{ .Name }}";
{{ end }}`

const discoveryTemplateSource = `// Code generated by toolbench. DO NOT EDIT.

export interface CatalogEntry {
  server: string;
  tool: string;
  description: string;
}

const CATALOG: CatalogEntry[] = [
{{- range .Entries }}
  { server: {{ .Server | quote }}, tool: {{ .Name | quote }}, description: {{ .Description | quote }} },
{{- end }}
];

export function listServers(): string[] {
  const servers: string[] = [];
  for (const entry of CATALOG) {
    if (!servers.includes(entry.server)) {
      servers.push(entry.server);
    }
  }
  return servers;
}

export function listTools(server: string): string[] {
  return CATALOG.filter((entry) => entry.server === server).map((entry) => entry.tool);
}

export function searchTools(query: string): CatalogEntry[] {
  const needle = query.toLowerCase();
  return CATALOG.filter((entry) =>
    (entry.server + "/" + entry.tool).toLowerCase().includes(needle)
  );
}
`

const runtimeTemplateSource = `// Code generated by toolbench. DO NOT EDIT.

export class TransportError extends Error {
  constructor(message: string) {
    super(message);
    this.name = "TransportError";
  }
}

export class ProtocolError extends Error {
  code?: number;

  constructor(message: string, code?: number) {
    super(message);
    this.name = "ProtocolError";
    this.code = code;
  }
}

export class ToolError extends Error {
  constructor(message: string) {
    super(message);
    this.name = "ToolError";
  }
}

interface ServerEndpoint {
  url: string;
  headers: Record<string, string>;
}

const SERVERS: Record<string, ServerEndpoint> = {
{{- range .Servers }}
  {{ .Name | quote }}: {
    url: {{ .URL | quote }},
    headers: {{ if .Headers }}{
{{- range .Headers }}
      {{ .Key | quote }}: {{ .Value | quote }},
{{- end }}
    }{{ else }}{}{{ end }},
  },
{{- end }}
};

const CALL_TIMEOUT_MS = {{ .CallTimeoutMs }};

let nextRequestId = 1;

interface RpcError {
  code: number;
  message: string;
}

interface RpcResult {
  content?: Array<{ type: string; text?: string }>;
  isError?: boolean;
}

interface RpcEnvelope {
  result?: RpcResult;
  error?: RpcError;
}

function extractText(result: RpcResult | undefined): unknown {
  if (!result || !result.content) {
    return null;
  }
  const parts: string[] = [];
  for (const item of result.content) {
    if (item.type === "text" && typeof item.text === "string") {
      parts.push(item.text);
    }
  }
  const text = parts.join("\n");
  try {
    return JSON.parse(text);
  } catch {
    return text;
  }
}

async function parseEnvelope(response: Response): Promise<RpcEnvelope> {
  const contentType = response.headers.get("content-type") || "";
  const body = await response.text();
  if (contentType.includes("text/event-stream")) {
    for (const line of body.split("\n")) {
      if (line.startsWith("data:")) {
        return JSON.parse(line.slice(5).trim()) as RpcEnvelope;
      }
    }
    throw new ProtocolError("event stream contained no data frame");
  }
  try {
    return JSON.parse(body) as RpcEnvelope;
  } catch {
    throw new ProtocolError("malformed JSON-RPC response: " + body.slice(0, 200));
  }
}

export async function callTool(server: string, tool: string, input: unknown): Promise<unknown> {
  const endpoint = SERVERS[server];
  if (!endpoint) {
    throw new TransportError("unknown server: " + server);
  }

  const request = {
    jsonrpc: "2.0",
    id: nextRequestId++,
    method: "tools/call",
    params: { name: tool, arguments: input === undefined ? {} : input },
  };

  const controller = new AbortController();
  const timer = setTimeout(() => controller.abort(), CALL_TIMEOUT_MS);

  let response: Response;
  try {
    response = await fetch(endpoint.url, {
      method: "POST",
      headers: {
        "Content-Type": "application/json",
        "Accept": "application/json, text/event-stream",
        ...endpoint.headers,
      },
      body: JSON.stringify(request),
      signal: controller.signal,
    });
  } catch (err) {
    throw new TransportError("calling " + server + "/" + tool + ": " + String(err));
  } finally {
    clearTimeout(timer);
  }

  if (!response.ok) {
    throw new TransportError("calling " + server + "/" + tool + ": HTTP " + response.status);
  }

  const envelope = await parseEnvelope(response);
  if (envelope.error) {
    throw new ProtocolError(envelope.error.message || "JSON-RPC error", envelope.error.code);
  }
  if (envelope.result && envelope.result.isError) {
    const detail = extractText(envelope.result);
    const message = typeof detail === "string" ? detail : JSON.stringify(detail);
    throw new ToolError(message || "tool " + server + "/" + tool + " failed");
  }
  return extractText(envelope.result);
}
`

type wrapperData struct {
	Server           string
	Tool             string
	InterfaceName    string
	FunctionName     string
	DescriptionLines []string
	Members          []Member
	IndexSignature   string
	EmptyInput       bool
}

// renderWrapper renders one tool unit.
func renderWrapper(server string, tool ToolSpec) (string, error) {
	data := wrapperData{
		Server:         server,
		Tool:           tool.Name,
		InterfaceName:  interfaceName(tool.Name),
		FunctionName:   functionName(tool.Name),
		Members:        Members(tool.Schema),
		IndexSignature: indexSignature(tool.Schema),
	}
	if strings.TrimSpace(tool.Description) != "" {
		data.DescriptionLines = commentLines(tool.Description)
	}
	data.EmptyInput = len(data.Members) == 0 && data.IndexSignature == ""
	return execute(wrapperTemplate, data)
}

// RenderServer renders every file for one server: one wrapper unit per tool
// plus the index. Returns file name to content.
func RenderServer(cat ServerCatalog) (map[string]string, error) {
	files := make(map[string]string, len(cat.Tools)+1)
	for _, tool := range cat.Tools {
		content, err := renderWrapper(cat.Name, tool)
		if err != nil {
			return nil, err
		}
		files[tool.Name+wrapperExt] = content
	}

	index, err := execute(indexTemplate, cat)
	if err != nil {
		return nil, err
	}
	files["index"+wrapperExt] = index
	return files, nil
}

// RenderDiscovery renders the cross-server discovery catalog from scanned
// descriptors.
func RenderDiscovery(descriptors []catalog.ToolDescriptor) (string, error) {
	return execute(discoveryTemplate, struct {
		Entries []catalog.ToolDescriptor
	}{Entries: descriptors})
}

type headerPair struct {
	Key   string
	Value string
}

type runtimeServer struct {
	Name    string
	URL     string
	Headers []headerPair
}

type runtimeData struct {
	CallTimeoutMs int64
	Servers       []runtimeServer
}

// RenderRuntime renders the shared JSON-RPC runtime the wrappers delegate
// to. Header values are embedded as configured at generation time.
func RenderRuntime(servers []config.ServerConfig, callTimeout time.Duration) (string, error) {
	data := runtimeData{CallTimeoutMs: callTimeout.Milliseconds()}
	for _, srv := range servers {
		endpoint := runtimeServer{Name: srv.Name, URL: srv.URL}
		keys := make([]string, 0, len(srv.Headers))
		for key := range srv.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			endpoint.Headers = append(endpoint.Headers, headerPair{Key: key, Value: srv.Headers[key]})
		}
		data.Servers = append(data.Servers, endpoint)
	}
	sort.Slice(data.Servers, func(i, j int) bool {
		return data.Servers[i].Name < data.Servers[j].Name
	})
	return execute(runtimeTemplate, data)
}

func execute(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}
