package mailsmodels

import (
	"fmt"
)

func PaymentReminder(conceptName, pending string) []byte {
	subject := "Subject: Recordatorio de pago - CBTa 71 \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #1B5E20; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%;  min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Tienes un pago pendiente</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Concepto: <strong>%s</strong></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Saldo pendiente: <strong>$%s MXN</strong></td>
				</tr>
			</tbody>
		</table>
	</div>
`, conceptName, pending)

	return []byte(subject + mime + body)
}
