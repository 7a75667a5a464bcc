package usecases

import (
	"fmt"
	"strings"

	"factura-scanner.backend/internal/domain/entities"
)

// Onboarding script. Static text keyed by step; the flow logic lives in
// the registration usecase, not here.

const msgAwaitingName = "👋 ¡Hola! Soy el asistente de *Factura Scanner*.\n\n" +
	"Para comenzar a procesar tus facturas, necesito unos datos rápidos:\n\n" +
	"1️⃣ *¿Cuál es tu nombre completo?*"

const msgAwaitingEmail = "3️⃣ Por último, ¿me indicas tu *correo electrónico*?\n\n" +
	"Aquí te enviaremos el enlace a tu planilla de Excel con los datos extraídos.\n" +
	"(Ej: tu@email.com)"

const msgInvalidEmail = "❌ Ese no parece un email válido.\n\nIntenta de nuevo (Ej: juan@empresa.com)"

const msgProvisioningFailed = "🎉 *¡Registro Completado!*\n\n" +
	"Tu cuenta quedó activa, pero no pudimos crear tu planilla de Google Sheets en este momento. " +
	"Nuestro equipo la creará manualmente y te avisaremos. Ya puedes enviarme tus facturas. 📸"

const msgDocumentAccepted = "📄 ¡Recibí tu documento! Lo estoy procesando, te aviso en cuanto tenga los datos. ⏳"

const msgAccountInactive = "⚠️ Tu cuenta no está habilitada para procesar documentos en este momento."

const msgProcessingFailed = "😔 No pude procesar tu documento después de varios intentos.\n\n" +
	"Por favor, intenta enviarlo de nuevo en unos minutos. Si el problema persiste, " +
	"probá con una foto más nítida o un PDF."

func msgAwaitingCompany(userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		name = "amigo"
	}
	return fmt.Sprintf("2️⃣ ¡Genial, %s! ¿Cuál es el *nombre de tu empresa*?\n\n", name) +
		"Lo usaremos para clasificar tus documentos.\n(Ej: Mi Empresa S.A.)"
}

func msgComplete(userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		name = "a Factura Scanner"
	}
	return "🎉 *¡Registro Completado!*\n\n" +
		fmt.Sprintf("¡Bienvenido %s! 🚀\n\n", name) +
		"Ahora puedes enviarme una *foto* o *PDF* de tus facturas y las procesaré automáticamente. 📸\n\n" +
		"_Los datos se guardarán en tu planilla de Google Sheets_"
}

func promptForStep(step RegistrationStep, userName string) string {
	switch step {
	case StepAwaitingName:
		return msgAwaitingName
	case StepAwaitingCompany:
		return msgAwaitingCompany(userName)
	case StepAwaitingEmail:
		return msgAwaitingEmail
	default:
		return msgComplete(userName)
	}
}

func msgExtractionSummary(extraction *entities.InvoiceExtraction) string {
	var sb strings.Builder
	sb.WriteString("✅ *¡Documento procesado!*\n\n")

	docType := string(extraction.DocumentType)
	if docType == "" {
		docType = string(entities.DocumentTypeOtro)
	}
	sb.WriteString(fmt.Sprintf("📋 Tipo: %s\n", docType))

	if extraction.Data != nil {
		d := extraction.Data
		if d.Proveedor != "" {
			sb.WriteString(fmt.Sprintf("🏢 Proveedor: %s\n", d.Proveedor))
		}
		if d.CUIT != "" {
			sb.WriteString(fmt.Sprintf("🆔 CUIT: %s\n", d.CUIT))
		}
		if d.Fecha != "" {
			sb.WriteString(fmt.Sprintf("📅 Fecha: %s\n", d.Fecha))
		}
		if d.NumeroFactura != "" {
			sb.WriteString(fmt.Sprintf("🔢 Comprobante: %s\n", d.NumeroFactura))
		}
		if d.Total != nil {
			sb.WriteString(fmt.Sprintf("💰 Total: $%.2f\n", *d.Total))
		}
		if d.IVA != nil {
			sb.WriteString(fmt.Sprintf("🧾 IVA: $%.2f\n", *d.IVA))
		}
	}

	sb.WriteString("\n_Los datos ya están en tu planilla_ 📊")
	return sb.String()
}
