package mailsmodels

import (
	"fmt"
)

func PaymentFailed(conceptName, amount string) []byte {
	subject := "Subject: Problema con tu pago - CBTa 71 \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #B71C1C; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%;  min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Tu pago no pudo procesarse</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">El pago del concepto <strong>%s</strong> por <strong>$%s MXN</strong> fue rechazado por el procesador.</td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Puedes intentarlo de nuevo desde la plataforma con otro método de pago.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, conceptName, amount)

	return []byte(subject + mime + body)
}
