package testgen

import (
	"strings"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

const systemPrompt = `Eres un experto en QA. Analiza esta issue de Jira y genera test cases a partir de ella. Considera analizar el código del proyecto si tienes acceso a él. Sobre todo, sé estricto con el formato.

## Cantidad de test cases

Decide cuántos casos generar según la complejidad de la issue:
- Simple (un cambio acotado, un solo flujo): 1-2 test cases
- Media (varios flujos o validaciones): 3-4 test cases
- Compleja (varios componentes, integraciones o reglas de negocio): 5-6 test cases

## Formato requerido

TITULO: [breve y claro]
TIPO: [Web|Api|Error]
DESCRIPCIÓN: [detallada, qué testear, cómo y por qué; al menos dos frases sustanciales]
RESULTADO: [qué se espera, observable y verificable]
---
[repetir para cada test case]

## Reglas

- TIPO debe ser exactamente uno de: Web, Api, Error.
  - Web: interacción con la interfaz de usuario.
  - Api: contratos HTTP, servicios o lógica de backend.
  - Error: manejo de errores, casos límite y entradas inválidas.
- Separa cada test case con una línea que contenga solo "---".
- No uses markdown, numeración ni texto fuera del formato.`

const webGuidance = `## Enfoque: Web

Orienta los test cases al frontend:
- Interacciones del usuario: clics, formularios, navegación y estados de carga.
- Validaciones visibles en la interfaz y mensajes mostrados al usuario.
- Comportamiento en distintos navegadores y tamaños de pantalla.
- Accesibilidad básica: foco, etiquetas y uso con teclado.
Usa TIPO: Web salvo que el caso sea de manejo de errores.`

const apiGuidance = `## Enfoque: Api

Orienta los test cases al backend:
- Endpoints afectados: método HTTP, ruta, parámetros y cuerpo de la petición.
- Códigos de estado esperados y estructura de la respuesta.
- Autenticación, autorización y validación de entradas.
- Efectos en datos persistidos e integraciones con otros servicios.
Usa TIPO: Api salvo que el caso sea de manejo de errores.`

// BuildPrompt assembles the single text payload sent to the provider: system
// instructions, optional domain guidance for the hint, and the issue block.
// The output depends only on its inputs.
func BuildPrompt(issue model.Issue, hint model.TestTypeHint) string {
	var sb strings.Builder

	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	switch hint {
	case model.HintWeb:
		sb.WriteString(webGuidance)
		sb.WriteString("\n\n")
	case model.HintApi:
		sb.WriteString(apiGuidance)
		sb.WriteString("\n\n")
	}

	sb.WriteString(issueBlock(issue))
	sb.WriteString("\nGenera los test cases para esta issue siguiendo el formato especificado.")

	return sb.String()
}

func issueBlock(issue model.Issue) string {
	var sb strings.Builder

	sb.WriteString("Issue de Jira:\n")
	sb.WriteString("Key: " + issue.Key + "\n")
	sb.WriteString("Título: " + issue.Summary + "\n")
	sb.WriteString("Tipo: " + issue.IssueType + "\n")
	sb.WriteString("Estado: " + issue.Status.Name + "\n")
	sb.WriteString("Prioridad: " + issue.Priority + "\n")
	sb.WriteString("Proyecto: " + issue.Project.Name + " (" + issue.Project.Key + ")\n")
	if issue.HasDescription() {
		sb.WriteString("Descripción: " + strings.TrimSpace(issue.Description) + "\n")
	}

	return sb.String()
}
